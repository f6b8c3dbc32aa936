package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordPublish(ctx, "bus", "t", 0)
		m.RecordHandler(ctx, "bus", "t", time.Millisecond, errors.New("x"))
		m.RecordCapture(ctx, "", "")
		m.RecordFlush(ctx, "", 0, 0)
	})
}

func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	t.Run("returns context unchanged", func(t *testing.T) {
		got, span := sm.StartPublishSpan(ctx, "bus", "t", 1)
		assert.Equal(t, ctx, got)
		assert.False(t, span.IsRecording())

		got, span = sm.StartFlushSpan(ctx, "queue", 2)
		assert.Equal(t, ctx, got)
		assert.False(t, span.IsRecording())
	})

	t.Run("end and event do not panic", func(t *testing.T) {
		_, span := sm.StartPublishSpan(ctx, "bus", "t", 1)
		assert.NotPanics(t, func() {
			sm.AddSpanEvent(ctx, "x", attribute.String("k", "v"))
			sm.EndSpanWithError(span, errors.New("x"))
		})
	})
}
