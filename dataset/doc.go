// Package dataset reads Blizzard utterance records from a split-keyed store
// and draws them in a fresh shuffled order every epoch.
//
// Records live under "<split>/<id>.json" in a storage.Storage. Each object
// holds the sources f0, mgc, spectrum, transcripts and voicing_str; a JSON
// null stands for NaN, which marks the corrupted tail the cleaner removes.
package dataset
