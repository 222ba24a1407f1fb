package dataset

import (
	"context"
	"math/rand/v2"

	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/pipeline"
)

// Shuffled returns a pipeline that yields the first numExamples utterances of
// store in a new random order on every iteration. rng is advanced once per
// epoch; it must not be shared with other goroutines.
func Shuffled(store Store, numExamples int, rng *rand.Rand) *pipeline.Pipeline[features.Utterance] {
	return pipeline.FromFunc(func(_ context.Context) pipeline.Iterator[features.Utterance] {
		return &orderIter{store: store, order: rng.Perm(numExamples)}
	})
}

type orderIter struct {
	store Store
	order []int
	pos   int
}

func (it *orderIter) Next(ctx context.Context) (features.Utterance, bool, error) {
	if it.pos >= len(it.order) {
		return features.Utterance{}, false, nil
	}
	u, err := it.store.Get(ctx, it.order[it.pos])
	if err != nil {
		return features.Utterance{}, false, err
	}
	it.pos++
	return u, true, nil
}

func (it *orderIter) Close() error { return nil }

// Sequential returns a pipeline over the first numExamples utterances of
// store in index order.
func Sequential(store Store, numExamples int) *pipeline.Pipeline[features.Utterance] {
	return pipeline.FromFunc(func(_ context.Context) pipeline.Iterator[features.Utterance] {
		order := make([]int, numExamples)
		for i := range order {
			order[i] = i
		}
		return &orderIter{store: store, order: order}
	})
}
