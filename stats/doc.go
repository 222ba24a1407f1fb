// Package stats holds the global mean and standard deviation of each
// normalized feature, loaded once before a stream starts.
//
// The artifact is YAML:
//
//	f0:
//	  mean: [152.3]
//	  std: [38.1]
//	mgc:
//	  mean: [...]
//	  std: [...]
//	spectrum:
//	  mean: [...]
//	  std: [...]
//	voicing_str:   # optional
//	  mean: [...]
//	  std: [...]
//
// Compute produces the same artifact from a pass over the corpus.
package stats
