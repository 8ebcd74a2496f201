package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/healthgraph/graph"
)

// Pass operation names. They appear as the span name suffix and as the
// graph.op attribute on pass metrics.
const (
	OpRefreshAll = "refresh_all"
	OpRefresh    = "refresh"
)

const (
	spanPrefix = "healthgraph."
	spanCheck  = "healthgraph.check"
)

// Tracer wraps OpenTelemetry tracing with graph-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartPass starts a span covering one evaluation pass. op is one of
	// OpRefreshAll or OpRefresh.
	StartPass(ctx context.Context, op string) (context.Context, trace.Span)

	// StartCheck starts a span covering one node's intrinsic check.
	StartCheck(ctx context.Context, node string) (context.Context, trace.Span)

	// EndSpan ends the span, recording the resolved status and any error.
	EndSpan(span trace.Span, status graph.Status, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartPass starts a span named healthgraph.<op>.
func (t *tracerImpl) StartPass(ctx context.Context, op string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanPrefix+op,
		trace.WithAttributes(attribute.String("graph.op", op)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartCheck starts a healthgraph.check span carrying the node name.
func (t *tracerImpl) StartCheck(ctx context.Context, node string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanCheck,
		trace.WithAttributes(attribute.String("node.name", node)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan records the resolved status as an attribute, marks the span
// failed when err is non-nil, and ends it.
func (t *tracerImpl) EndSpan(span trace.Span, status graph.Status, err error) {
	span.SetAttributes(attribute.String("health.status", status.String()))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartPass(ctx context.Context, op string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, spanPrefix+op)
}

func (t *noopTracer) StartCheck(ctx context.Context, node string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, spanCheck)
}

func (t *noopTracer) EndSpan(span trace.Span, status graph.Status, err error) {
	span.End()
}
