// Package testutil provides fixtures shared by package tests: synthetic
// utterances, in-memory and on-disk corpora, and statistics that make the
// normalizer easy to reason about.
//
// Example:
//
//	func TestStream(t *testing.T) {
//	    store := testutil.Corpus(8, 10)
//	    s, err := blizzard.New(store, testutil.Stats(), opts, logger.NewNop())
//	    ...
//	}
package testutil
