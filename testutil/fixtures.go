package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/kbukum/speechprep/dataset"
	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/stats"
	"github.com/kbukum/speechprep/storage"
	"github.com/kbukum/speechprep/storage/local"
)

// VoicedF0 is the f0 of every voiced frame produced by Utterance.
const VoicedF0 = 110

// Utterance builds record k with n steps. Every third frame, starting at
// step 0, is unvoiced. Voiced frames have f0 VoicedF0 and voicing 0.5; mgc
// rows are [1 2], spectrum rows [3 4]; the transcript is [k+1 2 3].
func Utterance(k, n int) features.Utterance {
	f0 := make([]float64, n)
	mgc := features.NewFrames(n, 2)
	spec := features.NewFrames(n, 2)
	voicing := features.NewFrames(n, 1)
	for i := range f0 {
		if i%3 != 0 {
			f0[i] = VoicedF0
			voicing.Row(i)[0] = 0.5
		}
		copy(mgc.Row(i), []float64{1, 2})
		copy(spec.Row(i), []float64{3, 4})
	}
	return features.Utterance{
		ID:         fmt.Sprintf("utt-%02d", k),
		F0:         f0,
		MGC:        mgc,
		Spectrum:   spec,
		Voicing:    voicing,
		Transcript: []int{k + 1, 2, 3},
	}
}

// Varied is like Utterance but every feature changes over time, so the
// statistics computed from it pass validation.
func Varied(k, n int) features.Utterance {
	u := Utterance(k, n)
	for i := range u.F0 {
		if u.F0[i] > 0 {
			u.F0[i] = float64(100 + 10*(i%2) + k)
		}
		copy(u.MGC.Row(i), []float64{float64(i), float64(2 * i)})
		copy(u.Spectrum.Row(i), []float64{float64(i), -float64(i)})
	}
	return u
}

// Corpus returns n utterances of the given length in memory.
func Corpus(n, steps int) *dataset.MemoryStore {
	items := make([]features.Utterance, n)
	for i := range items {
		items[i] = Utterance(i, steps)
	}
	return dataset.NewMemoryStore(items)
}

// Stats has f0 moments (100, 10) and identity moments for mgc and
// spectrum, so a voiced f0 of VoicedF0 normalizes to exactly 1.
func Stats() *stats.Statistics {
	return &stats.Statistics{
		F0:       stats.Moments{Mean: []float64{100}, Std: []float64{10}},
		MGC:      stats.Moments{Mean: []float64{0, 0}, Std: []float64{1, 1}},
		Spectrum: stats.Moments{Mean: []float64{0, 0}, Std: []float64{1, 1}},
	}
}

// Storage opens local storage rooted at a fresh temporary directory.
func Storage(t testing.TB) (storage.Storage, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := local.NewStorage(dir)
	if err != nil {
		t.Fatalf("local.NewStorage: %v", err)
	}
	return st, dir
}

// WriteCorpus stores n Varied utterances of the given length under split.
func WriteCorpus(t testing.TB, st storage.Storage, split string, n, steps int) {
	t.Helper()
	for k := 0; k < n; k++ {
		if err := dataset.Write(context.Background(), st, split, Varied(k, steps)); err != nil {
			t.Fatalf("dataset.Write: %v", err)
		}
	}
}
