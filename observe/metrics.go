package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records view build and cache lookup metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordBuild records a materialization with duration and error status.
	RecordBuild(ctx context.Context, meta ViewMeta, duration time.Duration, err error)

	// RecordLookup records a cache lookup outcome.
	RecordLookup(ctx context.Context, meta ViewMeta, hit bool)
}

type metricsImpl struct {
	buildTotal    metric.Int64Counter
	buildErrors   metric.Int64Counter
	buildDuration metric.Float64Histogram
	lookupHits    metric.Int64Counter
	lookupMisses  metric.Int64Counter
}

// NewMetrics creates Metrics backed by meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	buildTotal, err := meter.Int64Counter(
		"viewcache.build.total",
		metric.WithDescription("Total number of view materializations"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, err
	}

	buildErrors, err := meter.Int64Counter(
		"viewcache.build.errors",
		metric.WithDescription("Total number of failed view materializations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	buildDuration, err := meter.Float64Histogram(
		"viewcache.build.duration_ms",
		metric.WithDescription("View materialization duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	lookupHits, err := meter.Int64Counter(
		"viewcache.lookup.hits",
		metric.WithDescription("Cache lookups served from a store"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	lookupMisses, err := meter.Int64Counter(
		"viewcache.lookup.misses",
		metric.WithDescription("Cache lookups that required a build"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		buildTotal:    buildTotal,
		buildErrors:   buildErrors,
		buildDuration: buildDuration,
		lookupHits:    lookupHits,
		lookupMisses:  lookupMisses,
	}, nil
}

func attrs(meta ViewMeta) metric.MeasurementOption {
	kv := []attribute.KeyValue{attribute.String("view.type", meta.View)}
	if meta.Backend != "" {
		kv = append(kv, attribute.String("view.backend", meta.Backend))
	}
	return metric.WithAttributes(kv...)
}

// RecordBuild records metrics for a materialization.
func (m *metricsImpl) RecordBuild(ctx context.Context, meta ViewMeta, duration time.Duration, err error) {
	opt := attrs(meta)

	m.buildTotal.Add(ctx, 1, opt)
	if err != nil {
		m.buildErrors.Add(ctx, 1, opt)
	}
	m.buildDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordLookup records a hit or a miss.
func (m *metricsImpl) RecordLookup(ctx context.Context, meta ViewMeta, hit bool) {
	if hit {
		m.lookupHits.Add(ctx, 1, attrs(meta))
		return
	}
	m.lookupMisses.Add(ctx, 1, attrs(meta))
}

type noopMetrics struct{}

// NewNoopMetrics returns Metrics that record nothing.
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordBuild(context.Context, ViewMeta, time.Duration, error) {}
func (noopMetrics) RecordLookup(context.Context, ViewMeta, bool)               {}
