// Package observability provides OpenTelemetry tracing and metrics for
// feature streams.
//
// Telemetry is off unless enabled in configuration; without it every
// instrument records into the global no-op providers.
//
//	shutdown, err := observability.Setup(ctx, cfg.Telemetry)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("blizzard"))
//	tracker := observability.NewEpochTracker(runID, epoch, metrics)
//	ctx, span := tracker.Start(ctx)
//	defer tracker.End(ctx, span, err)
package observability
