package blizzard

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/speechprep/dataset"
	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/logger"
	"github.com/kbukum/speechprep/observability"
	"github.com/kbukum/speechprep/pipeline"
	"github.com/kbukum/speechprep/stats"
	"github.com/kbukum/speechprep/transform"
)

// Stage names used in logs and metrics.
const (
	StageRead     = "read"
	StageClean    = "remove_nans"
	StageClip     = "clip_f0"
	StageSort     = "sort"
	StagePad      = "pad"
	StageSegment  = "segment"
	StageFinalize = "finalize"
)

// Stages lists every stage name, in stream order.
var Stages = []string{StageRead, StageClean, StageClip, StageSort, StagePad, StageSegment, StageFinalize}

// Stream is a restartable source of feature tensors.
type Stream struct {
	opts        Options
	set         settings
	store       dataset.Store
	norm        *transform.Normalizer
	numExamples int
	runID       string
	log         *logger.Logger
	metrics     *observability.Metrics

	mu    sync.Mutex
	rng   *rand.Rand
	epoch atomic.Int64
	core  *pipeline.Pipeline[*features.Output]
	pipe  *pipeline.Pipeline[*features.Output]
}

// New validates opts and statistics against store and assembles the stage
// chain. No record is read until an epoch is pulled.
func New(store dataset.Store, st *stats.Statistics, opts Options, log *logger.Logger) (*Stream, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	set, err := opts.resolve()
	if err != nil {
		return nil, errors.Configuration("", err.Error())
	}
	if err := transform.ValidateWindow(set.window); err != nil {
		return nil, err
	}
	norm, err := transform.NewNormalizer(st, opts.NormalizeVoicing)
	if err != nil {
		return nil, err
	}
	n, err := numExamples(store.Len(), opts)
	if err != nil {
		return nil, err
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	if log == nil {
		log = logger.Get("blizzard")
	}
	metrics, err := observability.NewMetrics(observability.Meter("blizzard"))
	if err != nil {
		return nil, errors.Internal(err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	s := &Stream{
		opts:        opts,
		set:         set,
		store:       store,
		norm:        norm,
		numExamples: n,
		runID:       runID,
		log:         log.WithFields(logger.Fields(logger.FieldRunID, runID)),
		metrics:     metrics,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	s.core = s.assemble()
	s.pipe = pipeline.FromFunc(s.startEpoch)

	s.log.Info("stream ready", logger.Fields(
		"records", store.Len(),
		"num_examples", n,
		"pool", opts.PoolSize(),
		"batch_size", opts.BatchSize,
		"seq_length", opts.SeqLength,
		"seed", seed,
	))
	return s, nil
}

// numExamples resolves the per-epoch record count.
func numExamples(available int, opts Options) (int, error) {
	pool := opts.PoolSize()
	if opts.NumExamples > 0 {
		if opts.NumExamples > available {
			return 0, errors.Configuration("num_examples",
				fmt.Sprintf("num_examples %d exceeds the %d records available", opts.NumExamples, available))
		}
		return opts.NumExamples, nil
	}
	n := pool * (available / pool)
	if n == 0 {
		return 0, errors.Configuration("num_examples",
			fmt.Sprintf("%d records cannot fill one pool of %d", available, pool))
	}
	return n, nil
}

// RunID identifies the stream in logs and traces.
func (s *Stream) RunID() string { return s.runID }

// NumExamples is the number of records read per epoch.
func (s *Stream) NumExamples() int { return s.numExamples }

// Sources lists the channels of every output, in order.
func (s *Stream) Sources() []features.Channel { return s.set.sources }

// Options returns the resolved options.
func (s *Stream) Options() Options { return s.opts }

// Pipeline returns the restartable stream. Each iteration is one epoch.
func (s *Stream) Pipeline() *pipeline.Pipeline[*features.Output] { return s.pipe }

// Epoch starts the next epoch. The caller must Close the iterator.
func (s *Stream) Epoch(ctx context.Context) pipeline.Iterator[*features.Output] {
	return s.pipe.Iter(ctx)
}

func (s *Stream) assemble() *pipeline.Pipeline[*features.Output] {
	records := pipeline.FromFunc(func(ctx context.Context) pipeline.Iterator[features.Utterance] {
		s.mu.Lock()
		defer s.mu.Unlock()
		return meter(s, StageRead, dataset.Shuffled(s.store, s.numExamples, s.rng).Iter(ctx), nil)
	})
	records = pipeline.Tap(records, func(ctx context.Context, _ features.Utterance) error {
		s.metrics.RecordRead(ctx)
		return nil
	})
	cleaned := pipeline.Map(records, timed(s, StageClean, func(_ context.Context, u features.Utterance) (features.Utterance, error) {
		return transform.RemoveNaNs(u)
	}))
	clipped := pipeline.Map(cleaned, timed(s, StageClip, func(_ context.Context, u features.Utterance) (features.Utterance, error) {
		return transform.ClipF0(u, s.opts.F0Ceiling), nil
	}))

	pools := pipeline.Batch(clipped, s.opts.PoolSize())
	groups := pipeline.FlatMapSlice(pools, timed(s, StageSort, s.sortPool))
	padded := pipeline.Map(groups, timed(s, StagePad, s.pad))
	segments := pipeline.Through(padded, s.segment)
	out := pipeline.Map(segments, timed(s, StageFinalize, s.finalize))

	if s.opts.Prefetch > 0 {
		out = pipeline.Buffer(out, s.opts.Prefetch)
	}
	return out
}

func (s *Stream) sortPool(ctx context.Context, pool []features.Utterance) ([][]features.Utterance, error) {
	groups, dropped := transform.SortPool(pool, s.opts.BatchSize)
	if dropped > 0 {
		if s.opts.Strict {
			return nil, errors.EmptyBatch(dropped, s.opts.BatchSize)
		}
		s.metrics.RecordDropped(ctx, "pool_tail", dropped)
		logger.Get(StageSort).WithContext(ctx).Warn("dropping records that cannot fill a batch", logger.Fields(
			"dropped", dropped,
			"batch_size", s.opts.BatchSize,
		))
	}
	return groups, nil
}

// segment cuts padded batches into windows, timing only the segmenter's
// own work.
func (s *Stream) segment(src pipeline.Iterator[*features.Batch]) pipeline.Iterator[*features.Batch] {
	spent := new(time.Duration)
	cut := transform.Stage(s.set.window, transform.SegmentOptions{
		ReturnLast: s.opts.ReturnLast,
		ShareValue: s.opts.ShareValue,
	})
	return meter(s, StageSegment, cut(&clocked[*features.Batch]{inner: src, spent: spent}), spent)
}

func (s *Stream) pad(ctx context.Context, group []features.Utterance) (*features.Batch, error) {
	b, err := transform.Pad(group)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordBatch(ctx)
	return transform.Equalize(b, s.set.policy), nil
}

func (s *Stream) finalize(_ context.Context, b *features.Batch) (*features.Output, error) {
	transform.DeriveVoiced(b)
	if _, err := s.norm.Apply(b); err != nil {
		return nil, err
	}
	if _, err := transform.ZeroUnvoiced(b, s.set.zero); err != nil {
		return nil, err
	}
	out, missing := features.Select(b, s.set.sources, s.set.fx)
	if len(missing) > 0 {
		return nil, errors.InvalidInput("which_sources", fmt.Sprintf("the dataset does not provide %v", missing))
	}
	return out, nil
}

// timed records the duration and failures of one stage call.
func timed[I, O any](s *Stream, stage string, fn func(context.Context, I) (O, error)) func(context.Context, I) (O, error) {
	return func(ctx context.Context, in I) (O, error) {
		start := time.Now()
		out, err := fn(ctx, in)
		s.metrics.RecordStage(ctx, stage, time.Since(start))
		if err != nil {
			code := string(errors.ErrCodeInternal)
			if appErr, ok := errors.AsAppError(err); ok {
				code = string(appErr.Code)
				appErr.WithDetail(logger.FieldStage, stage)
			}
			s.metrics.RecordError(ctx, code, stage)
		}
		return out, err
	}
}

// metered times every Next of an iterator stage. When upstream is set it
// accumulates the time spent pulling from the stage's source, which is
// subtracted so the stage is charged only for its own work.
type metered[T any] struct {
	inner    pipeline.Iterator[T]
	upstream *time.Duration
	s        *Stream
	stage    string
}

func meter[T any](s *Stream, stage string, inner pipeline.Iterator[T], upstream *time.Duration) *metered[T] {
	return &metered[T]{inner: inner, upstream: upstream, s: s, stage: stage}
}

func (m *metered[T]) Next(ctx context.Context) (T, bool, error) {
	if m.upstream != nil {
		*m.upstream = 0
	}
	start := time.Now()
	v, ok, err := m.inner.Next(ctx)
	d := time.Since(start)
	if m.upstream != nil {
		d -= *m.upstream
	}
	m.s.metrics.RecordStage(ctx, m.stage, d)
	// Errors already tagged by an upstream stage were counted there.
	if appErr, isApp := errors.AsAppError(err); isApp {
		if _, tagged := appErr.Details[logger.FieldStage]; !tagged {
			appErr.WithDetail(logger.FieldStage, m.stage)
			m.s.metrics.RecordError(ctx, string(appErr.Code), m.stage)
		}
	}
	return v, ok, err
}

func (m *metered[T]) Close() error { return m.inner.Close() }

// clocked accumulates the time spent in Next into spent.
type clocked[T any] struct {
	inner pipeline.Iterator[T]
	spent *time.Duration
}

func (c *clocked[T]) Next(ctx context.Context) (T, bool, error) {
	start := time.Now()
	v, ok, err := c.inner.Next(ctx)
	*c.spent += time.Since(start)
	return v, ok, err
}

func (c *clocked[T]) Close() error { return c.inner.Close() }

// startEpoch opens telemetry for a new pass and returns its iterator.
func (s *Stream) startEpoch(ctx context.Context) pipeline.Iterator[*features.Output] {
	epoch := int(s.epoch.Add(1))
	tracker := observability.NewEpochTracker(s.runID, epoch, s.metrics)
	ctx, span := tracker.Start(ctx)
	ctx = logger.ContextWithRun(ctx, s.runID, epoch)

	log := s.log.WithFields(logger.Fields(logger.FieldEpoch, epoch))
	log.Debug("epoch started")
	return &epochIter{
		inner:   s.core.Iter(ctx),
		tracker: tracker,
		span:    span,
		runID:   s.runID,
		log:     log,
	}
}

type epochIter struct {
	inner   pipeline.Iterator[*features.Output]
	tracker *observability.EpochTracker
	span    trace.Span
	runID   string
	log     *logger.Logger
	ended   bool
}

func (it *epochIter) Next(ctx context.Context) (*features.Output, bool, error) {
	if it.ended {
		return nil, false, nil
	}
	ctx = trace.ContextWithSpan(ctx, it.span)
	ctx = observability.WithEpochTracker(ctx, it.tracker)
	ctx = logger.ContextWithRun(ctx, it.runID, it.tracker.Epoch)

	out, ok, err := it.inner.Next(ctx)
	if err != nil {
		it.finish(ctx, err)
		return nil, false, err
	}
	if !ok {
		it.finish(ctx, nil)
		return nil, false, nil
	}
	it.tracker.Segment(ctx)
	return out, true, nil
}

func (it *epochIter) Close() error {
	if !it.ended {
		it.log.Debug("epoch closed before the end of the stream", logger.Fields("segments", it.tracker.Segments()))
		it.finish(context.Background(), nil)
	}
	return it.inner.Close()
}

func (it *epochIter) finish(ctx context.Context, err error) {
	it.ended = true
	it.tracker.End(ctx, it.span, err)
	fields := logger.Fields(
		"segments", it.tracker.Segments(),
		logger.FieldDuration, it.tracker.Duration().Milliseconds(),
	)
	if err != nil {
		it.log.Error("epoch failed", logger.MergeWithError(fields, err))
		return
	}
	it.log.Info("epoch finished", fields)
}
