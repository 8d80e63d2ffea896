package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// installTracer swaps the global tracer provider for an in-memory one.
func installTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestDefaultConfigs(t *testing.T) {
	tc := DefaultTracerConfig("ticksim")
	if tc.ServiceName != "ticksim" || tc.Endpoint != "localhost:4318" || tc.SampleRate != 1.0 || !tc.Insecure {
		t.Errorf("unexpected tracer defaults: %+v", tc)
	}
	mc := DefaultMeterConfig("ticksim")
	if mc.ServiceName != "ticksim" || mc.Interval != 15*time.Second {
		t.Errorf("unexpected meter defaults: %+v", mc)
	}
}

func TestNewMetricsNoop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordStep(ctx, "w0", "idle", 0)
	metrics.RecordResult(ctx, "w0", "error", "not_loaded", -1)
	metrics.RecordAdmission(ctx, "w0", "infer", "1")
	metrics.RecordArrival(ctx, "detect")
	metrics.RecordWorkflow(ctx, "detect", "completed", 12)
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	metrics.RecordStep(ctx, "w0", "idle", 2)
	metrics.RecordStep(ctx, "w0", "busy", 1)
	metrics.RecordResult(ctx, "w0", "success", "completed", 4)
	metrics.RecordResult(ctx, "w0", "error", "deadline_missed", 0)
	metrics.RecordResult(ctx, "w0", "error", "not_loaded", -1)
	metrics.RecordAdmission(ctx, "w0", "infer", "1")
	metrics.RecordArrival(ctx, "detect")
	metrics.RecordWorkflow(ctx, "detect", "completed", 9)

	got := collect(t, reader)

	tests := []struct {
		name string
		want int64
	}{
		{MetricSteps, 2},
		{MetricResults, 3},
		{MetricAdmissions, 1},
		{MetricArrivals, 1},
		{MetricWorkflows, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := got[tc.name]
			if !ok {
				t.Fatalf("metric %s not collected", tc.name)
			}
			if v := sumValue(t, m); v != tc.want {
				t.Errorf("expected %d, got %d", tc.want, v)
			}
		})
	}

	latency, ok := got[MetricLatency].Data.(metricdata.Histogram[int64])
	if !ok {
		t.Fatalf("expected latency histogram, got %T", got[MetricLatency].Data)
	}
	var count uint64
	for _, dp := range latency.DataPoints {
		count += dp.Count
	}
	if count != 2 {
		t.Errorf("expected negative latency to be skipped, got %d observations", count)
	}
}

func TestStartSpanRecordsAttributes(t *testing.T) {
	exporter := installTracer(t)

	ctx, span := StartSpan(context.Background(), SpanStep)
	SetSpanAttribute(ctx, AttrExecutor, "w0")
	SetSpanAttribute(ctx, AttrResults, 2)
	SetSpanAttribute(ctx, AttrTick, int64(7))
	SetSpanAttribute(ctx, "ratio", 0.5)
	SetSpanAttribute(ctx, "busy", true)
	SetSpanAttribute(ctx, "functions", []string{"a", "b"})
	SetSpanAttribute(ctx, "unsupported", struct{}{})
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != SpanStep {
		t.Errorf("expected span %q, got %q", SpanStep, spans[0].Name)
	}
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrExecutor].AsString() != "w0" || attrs[AttrTick].AsInt64() != 7 {
		t.Errorf("unexpected attributes: %v", spans[0].Attributes)
	}
	if _, ok := attrs["unsupported"]; ok {
		t.Error("unsupported attribute types must be ignored")
	}
}

func TestSetSpanError(t *testing.T) {
	exporter := installTracer(t)

	ctx, span := StartSpan(context.Background(), SpanRun)
	SetSpanError(ctx, nil)
	SetSpanError(ctx, fmt.Errorf("cycle"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status)
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("expected one recorded error event, got %d", len(spans[0].Events))
	}
}

func TestSpanHelpersWithoutRecordingSpan(t *testing.T) {
	ctx := context.Background()
	SetSpanAttribute(ctx, "key", "value")
	SetSpanError(ctx, fmt.Errorf("ignored"))
	if SpanFromContext(ctx) == nil {
		t.Fatal("expected non-nil noop span")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := sampler(tc.rate).Description(); got != tc.want {
				t.Errorf("rate %v: expected %s, got %s", tc.rate, tc.want, got)
			}
		})
	}
	if got := sampler(0.5).Description(); got == "AlwaysOnSampler" || got == "AlwaysOffSampler" {
		t.Errorf("expected ratio sampler, got %s", got)
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource(context.Background(), "ticksim", "1.2.3", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.name" && kv.Value.AsString() == "ticksim" {
			found = true
		}
	}
	if !found {
		t.Errorf("service.name missing from %v", res.Attributes())
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, "ticksim", "dev", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown failed: %v", err)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || !cfg.Insecure || cfg.SampleRate != 1.0 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	cfg = Config{Endpoint: "collector:4318", SampleRate: 0.25}
	cfg.ApplyDefaults()
	if cfg.Insecure || cfg.SampleRate != 0.25 {
		t.Errorf("explicit values must be kept: %+v", cfg)
	}
}
