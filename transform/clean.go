package transform

import (
	"fmt"
	"math"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/features"
)

// DefaultF0Ceiling is the f0 value above which frames are clipped.
const DefaultF0Ceiling = 300.0

// RemoveNaNs truncates an utterance at the first voicing frame that contains
// a NaN. Recordings only carry NaN in a trailing run of voicing frames; any
// other pattern is reported as a malformed record.
func RemoveNaNs(u features.Utterance) (features.Utterance, error) {
	if err := u.Validate(); err != nil {
		return features.Utterance{}, errors.MalformedRecord(u.ID, err.Error())
	}

	cut := -1
	for i := 0; i < u.Voicing.Rows; i++ {
		if u.Voicing.RowHasNaN(i) {
			cut = i
			break
		}
	}
	if cut < 0 {
		cut = u.Len()
	} else {
		for i := cut + 1; i < u.Voicing.Rows; i++ {
			if !u.Voicing.RowHasNaN(i) {
				return features.Utterance{}, errors.MalformedRecord(u.ID,
					fmt.Sprintf("voicing frame %d has no NaN after NaN frame %d", i, cut))
			}
		}
	}

	for i := 0; i < cut; i++ {
		if math.IsNaN(u.F0[i]) {
			return features.Utterance{}, errors.MalformedRecord(u.ID, fmt.Sprintf("f0 frame %d is NaN", i))
		}
	}
	if u.MGC.HasNaN(cut) {
		return features.Utterance{}, errors.MalformedRecord(u.ID, "mgc contains NaN before the voicing cut")
	}
	if u.Spectrum.HasNaN(cut) {
		return features.Utterance{}, errors.MalformedRecord(u.ID, "spectrum contains NaN before the voicing cut")
	}

	if cut == u.Len() {
		return u, nil
	}
	return u.Head(cut), nil
}

// ClipF0 returns a copy of u whose f0 values above ceiling are set to it.
func ClipF0(u features.Utterance, ceiling float64) features.Utterance {
	f0 := make([]float64, len(u.F0))
	for i, v := range u.F0 {
		f0[i] = math.Min(v, ceiling)
	}
	u.F0 = f0
	return u
}

// ValidateCeiling rejects a non-positive or non-finite clip ceiling.
func ValidateCeiling(ceiling float64) error {
	if !(ceiling > 0) || math.IsInf(ceiling, 0) {
		return errors.Configuration("f0_ceiling", fmt.Sprintf("f0 ceiling must be positive (got %g)", ceiling))
	}
	return nil
}
