package cache

// Policy configures Service behavior.
type Policy struct {
	// SingleFlight makes concurrent misses for equal keys share one build.
	// Without it two callers racing on the same miss both build and both
	// insert, leaving duplicate entries.
	SingleFlight bool
}

// DefaultPolicy returns the default policy: single-flight on.
func DefaultPolicy() Policy {
	return Policy{SingleFlight: true}
}

// UnsynchronizedPolicy returns a policy without miss deduplication.
func UnsynchronizedPolicy() Policy {
	return Policy{SingleFlight: false}
}
