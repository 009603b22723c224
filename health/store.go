package health

import (
	"context"
	"time"
)

// DefaultSlowThreshold is the ping latency above which a store is degraded.
const DefaultSlowThreshold = time.Second

// Pinger is anything whose reachability can be probed, such as a
// docstore.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker pings a store.
type StoreChecker struct {
	name  string
	store Pinger
	slow  time.Duration
}

// StoreCheckerOption configures a StoreChecker.
type StoreCheckerOption func(*StoreChecker)

// WithSlowThreshold sets the latency above which the store is degraded.
func WithSlowThreshold(d time.Duration) StoreCheckerOption {
	return func(c *StoreChecker) {
		if d > 0 {
			c.slow = d
		}
	}
}

// NewStoreChecker creates a checker named name for store.
func NewStoreChecker(name string, store Pinger, opts ...StoreCheckerOption) *StoreChecker {
	c := &StoreChecker{name: name, store: store, slow: DefaultSlowThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the checker name.
func (c *StoreChecker) Name() string { return c.name }

// Check pings the store.
func (c *StoreChecker) Check(ctx context.Context) Result {
	start := time.Now()
	err := c.store.Ping(ctx)
	latency := time.Since(start)
	details := map[string]any{"latency": latency.String()}

	switch {
	case err != nil:
		return Unhealthy("store unreachable", err).WithDetails(details)
	case latency > c.slow:
		return Degraded("store slow").WithDetails(details)
	default:
		return Healthy("store reachable").WithDetails(details)
	}
}

var _ Checker = (*StoreChecker)(nil)
