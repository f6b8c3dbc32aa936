package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("eventbus")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartPublishSpan starts a span covering one synchronous fan-out.
	StartPublishSpan(ctx context.Context, publisher, eventType string, handlers int) (context.Context, trace.Span)

	// StartFlushSpan starts a span covering one queue flush.
	// Publish spans started during the flush become its children.
	StartFlushSpan(ctx context.Context, publisher string, pending int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses the global OTel tracer
// provider. Configure it first with otel.SetTracerProvider.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartPublishSpan(ctx context.Context, publisher, eventType string, handlers int) (context.Context, trace.Span) {
	return StartPublishSpan(ctx, publisher, eventType, handlers)
}

func (m *otelSpanManager) StartFlushSpan(ctx context.Context, publisher string, pending int) (context.Context, trace.Span) {
	return StartFlushSpan(ctx, publisher, pending)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartPublishSpan starts an "eventbus.publish" span on the global tracer.
func StartPublishSpan(ctx context.Context, publisher, eventType string, handlers int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventbus.publish",
		trace.WithAttributes(
			attribute.String("event.type", eventType),
			attribute.String("publisher", publisher),
			attribute.Int("handler.count", handlers),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartFlushSpan starts an "eventbus.flush" span on the global tracer.
func StartFlushSpan(ctx context.Context, publisher string, pending int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventbus.flush",
		trace.WithAttributes(
			attribute.String("publisher", publisher),
			attribute.Int("queue.size", pending),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
