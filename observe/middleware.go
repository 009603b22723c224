package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/viewcache/param"
)

// BuildFunc materializes one view for a parameter map.
type BuildFunc func(ctx context.Context, meta ViewMeta, params param.Map) (any, error)

// Middleware wraps view builds with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap returns a BuildFunc that is safe for concurrent use.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
//   - Ownership: params and the built view pass through untouched.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware from its components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// NewNoopMiddleware returns a Middleware that records nothing.
func NewNoopMiddleware() *Middleware {
	return NewMiddleware(NewNoopTracer(), NewNoopMetrics(), NopLogger())
}

// Wrap decorates fn.
func (m *Middleware) Wrap(fn BuildFunc) BuildFunc {
	return func(ctx context.Context, meta ViewMeta, params param.Map) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		view, err := fn(ctx, meta, params)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordBuild(ctx, meta, duration, err)

		log := m.logger.WithView(meta)
		fields := []Field{
			F("duration_ms", float64(duration.Milliseconds())),
			F("param_names", params.Names()),
		}
		if err != nil {
			log.Error(ctx, "view build failed", append(fields, F("error", err))...)
		} else {
			log.Debug(ctx, "view built", fields...)
		}
		return view, err
	}
}

// Metrics returns the metrics sink used by the middleware.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Logger returns the logger used by the middleware.
func (m *Middleware) Logger() Logger { return m.logger }

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
