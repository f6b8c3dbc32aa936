// Package observability provides logging, metrics, and tracing for the
// event bus.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds the publisher name to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "render-queue")
//	enriched.Info("flushing") // includes publisher=render-queue
func EnrichLogger(logger *slog.Logger, publisher string) *slog.Logger {
	if logger == nil {
		return nil
	}
	if publisher == "" {
		return logger
	}
	return logger.With(slog.String("publisher", publisher))
}

// LogHandlerError logs a subscriber that returned an error.
func LogHandlerError(logger *slog.Logger, eventType string, subscriptionID uint64, err error) {
	if logger == nil {
		return
	}
	logger.Error("event handler failed",
		slog.String("event_type", eventType),
		slog.Uint64("subscription_id", subscriptionID),
		slog.String("error", err.Error()),
	)
}

// LogHandlerPanic logs a recovered subscriber panic together with its stack.
func LogHandlerPanic(logger *slog.Logger, eventType string, subscriptionID uint64, value any, stack string) {
	if logger == nil {
		return
	}
	logger.Error("event handler panicked",
		slog.String("event_type", eventType),
		slog.Uint64("subscription_id", subscriptionID),
		slog.Any("panic", value),
		slog.String("stack", stack),
	)
}

// LogTypeOverwrite logs an event whose preset type was replaced at publish time.
func LogTypeOverwrite(logger *slog.Logger, previous, eventType string) {
	if logger == nil {
		return
	}
	logger.Warn("event type overwritten at publish",
		slog.String("previous_type", previous),
		slog.String("event_type", eventType),
	)
}

// LogCapture logs an event captured into a queue.
func LogCapture(logger *slog.Logger, eventType string, pending int) {
	if logger == nil {
		return
	}
	logger.Debug("event queued",
		slog.String("event_type", eventType),
		slog.Int("pending", pending),
	)
}

// LogFlush logs a completed queue flush.
func LogFlush(logger *slog.Logger, events int, durationMs float64, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warn("queue flushed with handler failures",
			slog.Int("events", events),
			slog.Float64("duration_ms", durationMs),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("queue flushed",
		slog.Int("events", events),
		slog.Float64("duration_ms", durationMs),
	)
}

// TimedOperation measures the duration of an operation.
// The returned function reports elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
