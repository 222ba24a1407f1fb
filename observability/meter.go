package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/speechprep/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded while a stream runs.
type Metrics struct {
	recordsRead    metric.Int64Counter
	recordsDropped metric.Int64Counter
	batchesTotal   metric.Int64Counter
	segmentsTotal  metric.Int64Counter
	epochTotal     metric.Int64Counter
	epochDuration  metric.Float64Histogram
	stageDuration  metric.Float64Histogram
	errorTotal     metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	recordsRead, err := meter.Int64Counter("records.read",
		metric.WithDescription("Records read from the dataset"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating records.read counter: %w", err)
	}

	recordsDropped, err := meter.Int64Counter("records.dropped",
		metric.WithDescription("Records discarded by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating records.dropped counter: %w", err)
	}

	batchesTotal, err := meter.Int64Counter("batches.total",
		metric.WithDescription("Padded batches produced by the sorter"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batches.total counter: %w", err)
	}

	segmentsTotal, err := meter.Int64Counter("segments.total",
		metric.WithDescription("Segments handed to the consumer"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating segments.total counter: %w", err)
	}

	epochTotal, err := meter.Int64Counter("epoch.total",
		metric.WithDescription("Completed epochs by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating epoch.total counter: %w", err)
	}

	epochDuration, err := meter.Float64Histogram("epoch.duration",
		metric.WithDescription("Duration of epochs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating epoch.duration histogram: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("stage.duration",
		metric.WithDescription("Duration of a single stage call in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by code and stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		recordsRead:    recordsRead,
		recordsDropped: recordsDropped,
		batchesTotal:   batchesTotal,
		segmentsTotal:  segmentsTotal,
		epochTotal:     epochTotal,
		epochDuration:  epochDuration,
		stageDuration:  stageDuration,
		errorTotal:     errorTotal,
	}, nil
}

// RecordRead counts one record read from the dataset.
func (m *Metrics) RecordRead(ctx context.Context) {
	m.recordsRead.Add(ctx, 1)
}

// RecordDropped counts records discarded for reason.
func (m *Metrics) RecordDropped(ctx context.Context, reason string, n int) {
	if n <= 0 {
		return
	}
	m.recordsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordBatch counts one padded batch.
func (m *Metrics) RecordBatch(ctx context.Context) {
	m.batchesTotal.Add(ctx, 1)
}

// RecordSegment counts one emitted segment.
func (m *Metrics) RecordSegment(ctx context.Context) {
	m.segmentsTotal.Add(ctx, 1)
}

// RecordStage records the time spent in one stage call.
func (m *Metrics) RecordStage(ctx context.Context, stage string, duration time.Duration) {
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordEpoch records a finished epoch.
func (m *Metrics) RecordEpoch(ctx context.Context, status string, duration time.Duration) {
	m.epochTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.epochDuration.Record(ctx, duration.Seconds())
}

// RecordError records an error by code and stage.
func (m *Metrics) RecordError(ctx context.Context, code, stage string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("stage", stage),
	))
}
