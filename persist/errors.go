package persist

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/jonwraymond/viewcache/cache"
)

var (
	// ErrNotFound indicates a targeted eviction found no record.
	ErrNotFound = errors.New("persist: record not found")

	// ErrDecode indicates a stored payload could not be turned back into a view.
	ErrDecode = errors.New("persist: decode payload")
)

// NotFoundError names the record a targeted eviction expected.
type NotFoundError struct {
	View reflect.Type
	ID   int64
}

func (e *NotFoundError) Error() string {
	if e.View == nil {
		return fmt.Sprintf("persist: view with id %d does not exist", e.ID)
	}
	return fmt.Sprintf("persist: view %s with id %d does not exist", cache.TypeName(e.View), e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
