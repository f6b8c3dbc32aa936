package eventbus

import (
	"log/slog"

	"github.com/randalmurphal/eventbus/pkg/eventbus/config"
)

// Configuration keys read by OptionsFromConfig.
const (
	ConfigKeyName          = "name"
	ConfigKeyRecoverPanics = "recover_panics"
	ConfigKeyMetrics       = "metrics.enabled"
	ConfigKeyTracing       = "tracing.enabled"
)

// OptionsFromConfig translates a config section into publisher options.
// Missing keys keep the defaults. logger may be nil.
//
//	name: render-queue
//	recover_panics: true
//	metrics:
//	  enabled: true
//	tracing:
//	  enabled: false
func OptionsFromConfig(cfg config.Config, logger *slog.Logger) []Option {
	opts := []Option{
		WithPanicRecovery(cfg.Bool(ConfigKeyRecoverPanics, true)),
		WithMetrics(cfg.Bool(ConfigKeyMetrics, false)),
		WithTracing(cfg.Bool(ConfigKeyTracing, false)),
	}
	if name := cfg.String(ConfigKeyName, ""); name != "" {
		opts = append(opts, WithName(name))
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return opts
}
