package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/viewcache/resilience"
)

func ExampleRetry_Execute() {
	errLocked := errors.New("database is locked")
	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		RetryIf:      func(err error) bool { return errors.Is(err, errLocked) },
	})

	attempts := 0
	err := retry.Execute(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errLocked
		}
		return nil
	})

	fmt.Println(err, attempts)
	// Output:
	// <nil> 3
}
