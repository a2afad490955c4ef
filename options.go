package pluginkit

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/trellis-data/pluginkit/astgrep"
	"github.com/trellis-data/pluginkit/cache"
	"github.com/trellis-data/pluginkit/store"
)

// EngineOption configures the Engine.
type EngineOption func(*engineConfig)

// engineConfig holds configuration for an Engine instance.
type engineConfig struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	matcher    astgrep.Matcher
	entryPoint string
}

// WithLogger sets a custom logger for the engine.
// If not provided, logging is discarded.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for discovery spans.
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(c *engineConfig) {
		c.tracer = tracer
	}
}

// WithMeter sets an OpenTelemetry meter for discovery metrics.
func WithMeter(meter metric.Meter) EngineOption {
	return func(c *engineConfig) {
		c.meter = meter
	}
}

// WithMatcher delegates registration-site extraction to an external
// structural-matching helper instead of the in-process scanner.
func WithMatcher(matcher astgrep.Matcher) EngineOption {
	return func(c *engineConfig) {
		c.matcher = matcher
	}
}

// WithEntryPoint overrides the registration entry-point function name.
// Default: "register_plugin".
func WithEntryPoint(name string) EngineOption {
	return func(c *engineConfig) {
		c.entryPoint = name
	}
}

// ManagerOption configures the Manager.
type ManagerOption func(*managerConfig)

// managerConfig holds configuration for a Manager instance.
type managerConfig struct {
	logger        *slog.Logger
	meter         metric.Meter
	cache         cache.Cache
	store         store.Store
	fallback      Fallback
	staticEnabled bool
	parallelism   int
}

// WithManagerLogger sets a custom logger for the manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(c *managerConfig) {
		c.logger = logger
	}
}

// WithManagerMeter sets an OpenTelemetry meter for manager metrics.
func WithManagerMeter(meter metric.Meter) ManagerOption {
	return func(c *managerConfig) {
		c.meter = meter
	}
}

// WithCache sets the fingerprint-keyed manifest cache consulted before
// any discovery runs.
func WithCache(c cache.Cache) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.cache = c
	}
}

// WithStore sets the manifest store every successful discovery is
// persisted to.
func WithStore(s store.Store) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.store = s
	}
}

// WithFallback sets the dynamic discovery path used when the static
// engine fails or is disabled.
func WithFallback(f Fallback) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.fallback = f
	}
}

// WithStaticEnabled opts in to the static engine. When false, every
// discovery call routes directly to the fallback.
func WithStaticEnabled(enabled bool) ManagerOption {
	return func(cfg *managerConfig) {
		cfg.staticEnabled = enabled
	}
}

// WithParallelism bounds how many packages DiscoverAll processes
// concurrently. Default: 4.
func WithParallelism(n int) ManagerOption {
	return func(cfg *managerConfig) {
		if n > 0 {
			cfg.parallelism = n
		}
	}
}
