// Package telemetry holds the OpenTelemetry instruments and tracer setup
// for the discovery pipeline. Instrumentation is optional everywhere: a
// nil Metrics value no-ops, so the engine runs identically with or
// without a configured provider.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ServiceName identifies this component in traces and metrics.
const ServiceName = "trellis-pluginkit"

// Metrics holds the metric instruments for discovery observability.
// Instruments are created once and reused for every discovery call.
type Metrics struct {
	// countCounter increments per discovery attempt, tagged with outcome
	countCounter metric.Int64Counter

	// durationHistogram records discovery duration in milliseconds
	durationHistogram metric.Float64Histogram

	// fallbackCounter increments when an attempt routes to the dynamic
	// path, tagged with the triggering error code
	fallbackCounter metric.Int64Counter

	// cacheHitCounter increments when a manifest is served from cache
	cacheHitCounter metric.Int64Counter
}

// NewMetrics creates the discovery metric instruments from a meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.countCounter, err = meter.Int64Counter(
		"discovery.count",
		metric.WithDescription("Number of static discovery attempts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create count counter: %w", err)
	}

	m.durationHistogram, err = meter.Float64Histogram(
		"discovery.duration",
		metric.WithDescription("Static discovery duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	m.fallbackCounter, err = meter.Int64Counter(
		"discovery.fallback",
		metric.WithDescription("Discovery attempts routed to the dynamic path"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fallback counter: %w", err)
	}

	m.cacheHitCounter, err = meter.Int64Counter(
		"discovery.cache.hits",
		metric.WithDescription("Manifests served from the cache"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cache hit counter: %w", err)
	}

	return m, nil
}

// RecordAttempt records one discovery attempt and its duration.
func (m *Metrics) RecordAttempt(ctx context.Context, pkg string, duration time.Duration, succeeded bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("package", pkg),
		attribute.Bool("success", succeeded),
	)
	m.countCounter.Add(ctx, 1, attrs)
	m.durationHistogram.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordFallback records that a package was routed to the dynamic path.
func (m *Metrics) RecordFallback(ctx context.Context, pkg, code string) {
	if m == nil {
		return
	}
	m.fallbackCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("package", pkg),
		attribute.String("code", code),
	))
}

// RecordCacheHit records a manifest served from the cache.
func (m *Metrics) RecordCacheHit(ctx context.Context, pkg string) {
	if m == nil {
		return
	}
	m.cacheHitCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("package", pkg),
	))
}

// NewTracerProvider creates a TracerProvider exporting through the given
// exporter, with this component's service identity attached.
func NewTracerProvider(exporter sdktrace.SpanExporter, logger *slog.Logger) *sdktrace.TracerProvider {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(ServiceName),
		),
	)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to create resource, using default", "error", err)
		}
		res = resource.Default()
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
}
