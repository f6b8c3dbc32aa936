package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a meter provider backed by a manual reader.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}
	return reader, cleanup
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumValue totals every data point of an int64 counter.
func sumValue(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordPublish(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordPublish(ctx, "bus", "input.key", 2)
	m.RecordPublish(ctx, "bus", "input.key", 0)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "eventbus.publish.count")
	assert.Equal(t, int64(2), sumValue(t, metric))

	sum := metric.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 2, "delivered and undelivered are separate series")
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key("event_type"))
		require.True(t, ok)
		assert.Equal(t, "input.key", v.AsString())
		_, ok = dp.Attributes.Value(attribute.Key("delivered"))
		assert.True(t, ok)
	}
}

func TestRecordHandler(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordHandler(ctx, "bus", "job", 5*time.Millisecond, nil)
	m.RecordHandler(ctx, "bus", "job", 7*time.Millisecond, errors.New("failed"))

	rm := collectMetrics(t, reader)

	latency := findMetric(rm, "eventbus.handler.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.InDelta(t, 12.0, hist.DataPoints[0].Sum, 0.01)

	assert.Equal(t, int64(1), sumValue(t, findMetric(rm, "eventbus.handler.errors")))
}

func TestRecordCaptureAndFlush(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCapture(ctx, "queue", "frame")
	m.RecordCapture(ctx, "queue", "frame")
	m.RecordCapture(ctx, "queue", "input")
	m.RecordFlush(ctx, "queue", 3, 2*time.Millisecond)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(3), sumValue(t, findMetric(rm, "eventbus.queue.captured")))

	size := findMetric(rm, "eventbus.queue.flush.size")
	require.NotNil(t, size)
	sizeHist, ok := size.Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, sizeHist.DataPoints, 1)
	assert.Equal(t, int64(3), sizeHist.DataPoints[0].Sum)

	assert.NotNil(t, findMetric(rm, "eventbus.queue.flush.latency_ms"))
}
