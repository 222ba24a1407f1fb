// Package pipeline provides composable, pull-based stream operators.
//
// Pipelines are lazy: no work happens until values are pulled via Collect,
// Drain, ForEach or Iter. Each stage pulls from the previous stage on demand,
// so a batch is only assembled when the consumer asks for it. Every call that
// creates an iterator builds fresh stage state, which is what makes a
// pipeline restartable epoch after epoch.
//
// # Operators
//
// Synchronous (single-goroutine, order preserving):
//
//   - Map: transform each value
//   - FlatMap: transform each value into an iterator and flatten
//   - Filter: keep values matching a predicate
//   - Tap: side-effect without altering the value (logging, metrics)
//   - Batch: group consecutive values into fixed-size slices
//   - Take: stop after n values
//   - Reduce: accumulate all values into one result
//   - Through: hand the upstream iterator to a stateful stage
//
// Concurrent:
//
//   - Buffer: prefetch with one producer goroutine (order preserved)
//
// # Usage
//
//	src := pipeline.FromSlice(utterances)
//	clean := pipeline.Map(src, func(_ context.Context, u features.Utterance) (features.Utterance, error) {
//	    return transform.RemoveNaNs(u)
//	})
//	pools := pipeline.Batch(clean, batchSize*sortingMultiplier)
//	batches, _ := pipeline.Collect(ctx, pools)
package pipeline
