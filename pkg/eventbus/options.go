package eventbus

import (
	"log/slog"

	"github.com/randalmurphal/eventbus/pkg/eventbus/observability"
)

// publisherConfig holds configuration shared by Publisher and QueuedPublisher.
type publisherConfig struct {
	name          string
	logger        *slog.Logger
	metrics       observability.MetricsRecorder
	spans         observability.SpanManager
	recoverPanics bool
}

func defaultPublisherConfig() publisherConfig {
	return publisherConfig{
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
		recoverPanics: true,
	}
}

func newPublisherConfig(opts []Option) publisherConfig {
	cfg := defaultPublisherConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = observability.EnrichLogger(cfg.logger, cfg.name)
	return cfg
}

// Option configures a Publisher or QueuedPublisher.
type Option func(*publisherConfig)

// WithName labels the publisher in logs, metrics, and spans.
func WithName(name string) Option {
	return func(c *publisherConfig) {
		c.name = name
	}
}

// WithLogger enables structured logging of handler failures, type
// overwrites, captures, and flushes. Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *publisherConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
// Default: false
func WithMetrics(enabled bool) Option {
	return func(c *publisherConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder installs a custom recorder.
func WithMetricsRecorder(r observability.MetricsRecorder) Option {
	return func(c *publisherConfig) {
		if r != nil {
			c.metrics = r
		}
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
// Default: false
func WithTracing(enabled bool) Option {
	return func(c *publisherConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager installs a custom span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *publisherConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithPanicRecovery controls whether handler panics are converted into
// *PanicError failures. With recovery off, a panic unwinds through Publish
// and skips the remaining handlers.
// Default: true
func WithPanicRecovery(enabled bool) Option {
	return func(c *publisherConfig) {
		c.recoverPanics = enabled
	}
}
