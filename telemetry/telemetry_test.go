package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordAttempt(ctx, "acme", 5*time.Millisecond, true)
	m.RecordAttempt(ctx, "acme", 3*time.Millisecond, false)
	m.RecordFallback(ctx, "acme", "UNRESOLVED_SYMBOL")
	m.RecordCacheHit(ctx, "acme")
}

func TestNilMetricsNoOp(t *testing.T) {
	var m *Metrics

	ctx := context.Background()
	m.RecordAttempt(ctx, "acme", time.Millisecond, true)
	m.RecordFallback(ctx, "acme", "SOURCE_NOT_FOUND")
	m.RecordCacheHit(ctx, "acme")
}

func TestNewTracerProvider(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := NewTracerProvider(exporter, nil)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	}()

	_, span := tp.Tracer("test").Start(context.Background(), "discovery")
	span.End()

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name != "discovery" {
		t.Errorf("span name = %q", spans[0].Name)
	}
}
