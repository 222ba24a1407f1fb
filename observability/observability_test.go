package observability

import (
	"context"
	"fmt"
	"strings"
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

	"github.com/kbukum/speechprep/errors"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("test-service")

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected ServiceName 'test-service', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Enabled {
		t.Error("telemetry must be off by default")
	}
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	cfg.SampleRate = 1.5
	if err := cfg.Validate(); !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), "test", Config{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}

	ctx := context.Background()
	metrics.RecordRead(ctx)
	metrics.RecordDropped(ctx, "pool_tail", 3)
	metrics.RecordBatch(ctx)
	metrics.RecordSegment(ctx)
	metrics.RecordStage(ctx, "pad", 2*time.Millisecond)
	metrics.RecordEpoch(ctx, StatusOK, time.Second)
	metrics.RecordError(ctx, "MALFORMED_RECORD", "clean")
}

func TestMetrics_Collected(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	ctx := context.Background()
	metrics.RecordDropped(ctx, "pool_tail", 5)
	metrics.RecordDropped(ctx, "pool_tail", 0)
	metrics.RecordRead(ctx)
	metrics.RecordRead(ctx)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					got[m.Name] += dp.Value
				}
			}
		}
	}
	if got["records.dropped"] != 5 {
		t.Errorf("records.dropped = %d, want 5", got["records.dropped"])
	}
	if got["records.read"] != 2 {
		t.Errorf("records.read = %d, want 2", got["records.read"])
	}
}

func TestEpochTracker(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	metrics, _ := NewMetrics(noop.NewMeterProvider().Meter("test"))
	et := NewEpochTracker("run-1", 2, metrics)
	ctx, span := et.Start(context.Background())
	if EpochTrackerFromContext(ctx) != et {
		t.Fatal("expected tracker in context")
	}
	et.Segment(ctx)
	et.Segment(ctx)
	et.End(ctx, span, fmt.Errorf("boom"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name != SpanEpoch {
		t.Errorf("span name = %q, want %q", s.Name, SpanEpoch)
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrRunID].AsString() != "run-1" {
		t.Errorf("run id = %v", attrs[AttrRunID])
	}
	if attrs[AttrSegments].AsInt64() != 2 {
		t.Errorf("segments = %v", attrs[AttrSegments])
	}
	if attrs[AttrStatus].AsString() != StatusFailed {
		t.Errorf("status = %v", attrs[AttrStatus])
	}
}

func TestEpochTracker_NilMetrics(t *testing.T) {
	et := NewEpochTracker("run-1", 0, nil)
	ctx, span := et.Start(context.Background())
	et.Segment(ctx)
	et.End(ctx, span, nil)
	if et.Segments() != 1 {
		t.Errorf("Segments() = %d, want 1", et.Segments())
	}
	if et.Duration() < 0 {
		t.Error("negative duration")
	}
}

func TestEpochTrackerFromContext_NotSet(t *testing.T) {
	if EpochTrackerFromContext(context.Background()) != nil {
		t.Error("expected nil tracker")
	}
}

func TestStartSpan(t *testing.T) {
	exporter := useRecorder(t)

	ctx, span := StartSpan(context.Background(), SpanDatasetOpen, attribute.StringSlice(AttrSplits, []string{"train"}))
	Annotate(ctx, attribute.Int(AttrRecords, 4))
	SetSpanError(ctx, fmt.Errorf("listing failed"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs[AttrSplits].AsStringSlice(); len(got) != 1 || got[0] != "train" {
		t.Errorf("splits = %v", got)
	}
	if attrs[AttrRecords].AsInt64() != 4 {
		t.Errorf("records = %v", attrs[AttrRecords])
	}
	if attrs[AttrErrorMessage].AsString() != "listing failed" {
		t.Errorf("error message = %v", attrs[AttrErrorMessage])
	}
	if s.Status.Code != codes.Error {
		t.Errorf("status = %v, want error", s.Status.Code)
	}
	if len(s.Events) != 1 {
		t.Errorf("expected 1 error event, got %d", len(s.Events))
	}
}

func TestAnnotateWithoutSpan(t *testing.T) {
	ctx := context.Background()
	Annotate(ctx, attribute.String("key", "value"))
	SetSpanError(ctx, fmt.Errorf("no span error"))
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "ParentBased{root:AlwaysOnSampler"},
		{2, "ParentBased{root:AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.5, "ParentBased{root:TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); !strings.HasPrefix(got, tt.want) {
			t.Errorf("sampler(%v) = %q, want prefix %q", tt.rate, got, tt.want)
		}
	}
}

// useRecorder installs an in-memory tracer provider for the test.
func useRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return exporter
}

func TestNewResource(t *testing.T) {
	res, err := newResource("svc", "dev", "test")
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.name" && kv.Value.AsString() == "svc" {
			found = true
		}
	}
	if !found {
		t.Error("expected service.name attribute")
	}
}

func TestInitTracer(t *testing.T) {
	for _, rate := range []float64{1.0, 0.0, 0.5} {
		cfg := DefaultTracerConfig("test")
		cfg.SampleRate = rate
		tp, err := InitTracer(context.Background(), &cfg)
		if err != nil {
			t.Fatalf("InitTracer(%v): %v", rate, err)
		}
		shutdown(t, tp.Shutdown)
	}
}

func TestInitMeter(t *testing.T) {
	cfg := DefaultMeterConfig("test")
	mp, err := InitMeter(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("InitMeter: %v", err)
	}
	shutdown(t, mp.Shutdown)
}

// shutdown stops a provider without waiting on the unreachable collector.
func shutdown(t *testing.T, fn func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = fn(ctx)
}
