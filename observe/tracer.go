package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ViewMeta describes a view type for telemetry purposes.
type ViewMeta struct {
	View    string   // View type name (required)
	Sources []string // Source type names feeding the view (optional)
	Backend string   // Cache store backend, e.g. memory or persistent (optional)
}

// SpanName returns the deterministic span name for a build of this view.
// Format: viewcache.build.<view>
func (m ViewMeta) SpanName() string {
	return "viewcache.build." + m.View
}

// Validate checks that the metadata names a view.
func (m ViewMeta) Validate() error {
	if m.View == "" {
		return ErrMissingViewName
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with view-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a view build.
	StartSpan(ctx context.Context, meta ViewMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with view metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta ViewMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("view.type", meta.View),
		attribute.Bool("view.error", false),
	}
	if len(meta.Sources) > 0 {
		attrs = append(attrs, attribute.StringSlice("view.sources", meta.Sources))
	}
	if meta.Backend != "" {
		attrs = append(attrs, attribute.String("view.backend", meta.Backend))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("view.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a tracer that records nothing.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ViewMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
