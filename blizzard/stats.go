package blizzard

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/speechprep/dataset"
	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/logger"
	"github.com/kbukum/speechprep/observability"
	"github.com/kbukum/speechprep/pipeline"
	"github.com/kbukum/speechprep/stats"
	"github.com/kbukum/speechprep/transform"
)

// ComputeStats derives normalization statistics from the first NumExamples
// records of store (all of them when NumExamples is 0), after the same NaN
// removal and f0 clipping the stream applies.
func ComputeStats(ctx context.Context, store dataset.Store, opts Options) (*stats.Statistics, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := store.Len()
	if opts.NumExamples > 0 && opts.NumExamples < n {
		n = opts.NumExamples
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanStats,
		attribute.Int(observability.AttrRecords, n))
	defer span.End()

	records := dataset.Sequential(store, n)
	cleaned := pipeline.Map(records, func(_ context.Context, u features.Utterance) (features.Utterance, error) {
		return transform.RemoveNaNs(u)
	})
	clipped := pipeline.Map(cleaned, func(_ context.Context, u features.Utterance) (features.Utterance, error) {
		return transform.ClipF0(u, opts.F0Ceiling), nil
	})

	s, err := stats.Compute(ctx, clipped)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	logger.Get("blizzard").Info("statistics computed", logger.Fields(
		"records", n,
		"mgc_dim", s.MGC.Dim(),
		"spectrum_dim", s.Spectrum.Dim(),
	))
	return s, nil
}
