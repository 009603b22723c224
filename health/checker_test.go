package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestStatus_String(t *testing.T) {
	tests := []struct {
		s    Status
		want string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestStoreChecker(t *testing.T) {
	down := errors.New("connection refused")
	tests := []struct {
		name string
		ping pingFunc
		want Status
	}{
		{"reachable", func(context.Context) error { return nil }, StatusHealthy},
		{"unreachable", func(context.Context) error { return down }, StatusUnhealthy},
		{"slow", func(context.Context) error { time.Sleep(20 * time.Millisecond); return nil }, StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewStoreChecker("views", tt.ping, WithSlowThreshold(5*time.Millisecond))
			r := c.Check(context.Background())
			if r.Status != tt.want {
				t.Errorf("Check().Status = %v, want %v", r.Status, tt.want)
			}
			if _, ok := r.Details["latency"]; !ok {
				t.Error("Check() details missing latency")
			}
			if tt.want == StatusUnhealthy && !errors.Is(r.Error, down) {
				t.Errorf("Check().Error = %v, want %v", r.Error, down)
			}
		})
	}
	if got := NewStoreChecker("views", pingFunc(nil)).Name(); got != "views" {
		t.Errorf("Name() = %q", got)
	}
}
