package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Epoch status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// EpochTracker holds telemetry state for one pass over a stream.
type EpochTracker struct {
	RunID     string
	Epoch     int
	StartTime time.Time
	Metrics   *Metrics
	segments  int
}

// NewEpochTracker creates a tracker for epoch of run runID.
// If metrics is nil, metric recording is silently skipped.
func NewEpochTracker(runID string, epoch int, metrics *Metrics) *EpochTracker {
	return &EpochTracker{
		RunID:     runID,
		Epoch:     epoch,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
}

type epochTrackerKey struct{}

// WithEpochTracker stores an EpochTracker in the context.
func WithEpochTracker(ctx context.Context, et *EpochTracker) context.Context {
	return context.WithValue(ctx, epochTrackerKey{}, et)
}

// EpochTrackerFromContext retrieves the EpochTracker from context, or nil.
func EpochTrackerFromContext(ctx context.Context) *EpochTracker {
	if et, ok := ctx.Value(epochTrackerKey{}).(*EpochTracker); ok {
		return et
	}
	return nil
}

// Start opens the epoch span.
func (et *EpochTracker) Start(ctx context.Context) (context.Context, trace.Span) {
	et.StartTime = time.Now()
	ctx, span := StartSpan(ctx, SpanEpoch,
		attribute.String(AttrRunID, et.RunID),
		attribute.Int(AttrEpoch, et.Epoch),
	)
	return WithEpochTracker(ctx, et), span
}

// Segment counts one emitted segment.
func (et *EpochTracker) Segment(ctx context.Context) {
	et.segments++
	if et.Metrics != nil {
		et.Metrics.RecordSegment(ctx)
	}
}

// Segments is the number of segments counted so far.
func (et *EpochTracker) Segments() int { return et.segments }

// End closes the span and records the epoch.
func (et *EpochTracker) End(ctx context.Context, span trace.Span, err error) {
	duration := time.Since(et.StartTime)
	status := StatusOK
	if err != nil {
		status = StatusFailed
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int(AttrSegments, et.segments),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if et.Metrics != nil {
		et.Metrics.RecordEpoch(ctx, status, duration)
	}
}

// Duration returns the elapsed time since the epoch started.
func (et *EpochTracker) Duration() time.Duration {
	return time.Since(et.StartTime)
}
