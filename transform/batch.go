package transform

import (
	"slices"

	"github.com/kbukum/speechprep/features"
)

// SortPool sorts a pool of utterances by length, ascending and stable, and
// cuts it into consecutive batches of batchSize. A trailing chunk shorter
// than batchSize is not returned; its size is reported as dropped.
func SortPool(pool []features.Utterance, batchSize int) (batches [][]features.Utterance, dropped int) {
	sorted := slices.Clone(pool)
	slices.SortStableFunc(sorted, func(a, b features.Utterance) int {
		return a.Len() - b.Len()
	})
	for len(sorted) >= batchSize {
		batches = append(batches, sorted[:batchSize:batchSize])
		sorted = sorted[batchSize:]
	}
	return batches, len(sorted)
}
