package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records event bus metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records one Publish call and how many handlers it reached.
	RecordPublish(ctx context.Context, publisher, eventType string, handlers int)

	// RecordHandler records a single handler invocation.
	RecordHandler(ctx context.Context, publisher, eventType string, duration time.Duration, err error)

	// RecordCapture records an event appended to a queue.
	RecordCapture(ctx context.Context, publisher, eventType string)

	// RecordFlush records a queue flush and the number of events it drained.
	RecordFlush(ctx context.Context, publisher string, events int, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes      metric.Int64Counter
	handlerLatency metric.Float64Histogram
	handlerErrors  metric.Int64Counter
	captured       metric.Int64Counter
	flushSize      metric.Int64Histogram
	flushLatency   metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventbus")

	publishes, err := meter.Int64Counter("eventbus.publish.count",
		metric.WithDescription("Number of published events"),
	)
	if err != nil {
		return nil, err
	}

	handlerLatency, err := meter.Float64Histogram("eventbus.handler.latency_ms",
		metric.WithDescription("Handler latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := meter.Int64Counter("eventbus.handler.errors",
		metric.WithDescription("Number of failed handler invocations"),
	)
	if err != nil {
		return nil, err
	}

	captured, err := meter.Int64Counter("eventbus.queue.captured",
		metric.WithDescription("Number of events captured into queues"),
	)
	if err != nil {
		return nil, err
	}

	flushSize, err := meter.Int64Histogram("eventbus.queue.flush.size",
		metric.WithDescription("Events drained per queue flush"),
	)
	if err != nil {
		return nil, err
	}

	flushLatency, err := meter.Float64Histogram("eventbus.queue.flush.latency_ms",
		metric.WithDescription("Queue flush latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishes:      publishes,
		handlerLatency: handlerLatency,
		handlerErrors:  handlerErrors,
		captured:       captured,
		flushSize:      flushSize,
		flushLatency:   flushLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider. If instrument creation fails, a no-op recorder is returned.
//
// Configure the provider before calling:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func typeAttrs(publisher, eventType string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("publisher", publisher),
		attribute.String("event_type", eventType),
	)
}

// RecordPublish records a publish.
func (m *otelMetrics) RecordPublish(ctx context.Context, publisher, eventType string, handlers int) {
	m.publishes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("publisher", publisher),
		attribute.String("event_type", eventType),
		attribute.Bool("delivered", handlers > 0),
	))
}

// RecordHandler records a handler invocation.
func (m *otelMetrics) RecordHandler(ctx context.Context, publisher, eventType string, duration time.Duration, err error) {
	attrs := typeAttrs(publisher, eventType)
	m.handlerLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if err != nil {
		m.handlerErrors.Add(ctx, 1, attrs)
	}
}

// RecordCapture records a queued event.
func (m *otelMetrics) RecordCapture(ctx context.Context, publisher, eventType string) {
	m.captured.Add(ctx, 1, typeAttrs(publisher, eventType))
}

// RecordFlush records a queue flush.
func (m *otelMetrics) RecordFlush(ctx context.Context, publisher string, events int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("publisher", publisher))
	m.flushSize.Record(ctx, int64(events), attrs)
	m.flushLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}
