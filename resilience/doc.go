// Package resilience retries transient backend failures.
//
// The persistent cache uses it around driver connect and ping, where an
// embedded database may report busy or locked and a networked one may still
// be selecting a server. View materialization is never retried: a failed
// build is a programming or configuration error.
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  5,
//	    InitialDelay: 50 * time.Millisecond,
//	    RetryIf:      isBusy,
//	})
//	err := retry.Execute(ctx, db.PingContext)
package resilience
