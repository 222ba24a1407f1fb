package transform

import (
	"fmt"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/features"
)

// Pad zero-pads a list of utterances to the longest one and lays the result
// out time-major. F0Mask is 1 on real frames. Transcripts are padded to the
// longest transcript with their own mask.
func Pad(records []features.Utterance) (*features.Batch, error) {
	if len(records) == 0 {
		return nil, errors.InvalidInput("records", "cannot pad an empty batch")
	}

	steps := 0
	for _, u := range records {
		if err := u.Validate(); err != nil {
			return nil, errors.MalformedRecord(u.ID, err.Error())
		}
		steps = max(steps, u.Len())
	}
	mgcDim, err := frameDim(records, features.MGC, func(u features.Utterance) features.Frames { return u.MGC })
	if err != nil {
		return nil, err
	}
	specDim, err := frameDim(records, features.Spectrum, func(u features.Utterance) features.Frames { return u.Spectrum })
	if err != nil {
		return nil, err
	}
	voicingDim, err := frameDim(records, features.Voicing, func(u features.Utterance) features.Frames { return u.Voicing })
	if err != nil {
		return nil, err
	}

	size := len(records)
	b := &features.Batch{
		IDs:    make([]string, size),
		F0:     features.NewSeries(steps, size, 1),
		F0Mask: features.NewSeries(steps, size, 1),
	}
	if mgcDim > 0 {
		b.MGC = features.NewSeries(steps, size, mgcDim)
	}
	if specDim > 0 {
		b.Spectrum = features.NewSeries(steps, size, specDim)
	}
	if voicingDim > 0 {
		b.Voicing = features.NewSeries(steps, size, voicingDim)
	}

	transcripts := make([][]int, size)
	for slot, u := range records {
		b.IDs[slot] = u.ID
		transcripts[slot] = u.Transcript
		for t := 0; t < u.Len(); t++ {
			b.F0.At(t, slot)[0] = u.F0[t]
			b.F0Mask.At(t, slot)[0] = 1
			if mgcDim > 0 {
				copy(b.MGC.At(t, slot), u.MGC.Row(t))
			}
			if specDim > 0 {
				copy(b.Spectrum.At(t, slot), u.Spectrum.Row(t))
			}
			if voicingDim > 0 {
				copy(b.Voicing.At(t, slot), u.Voicing.Row(t))
			}
		}
	}
	b.Transcripts = features.PadSymbols(transcripts)
	return b, nil
}

// frameDim returns the shared width of a frame feature. Utterances without
// frames do not constrain it.
func frameDim(records []features.Utterance, ch features.Channel, get func(features.Utterance) features.Frames) (int, error) {
	dim := 0
	for _, u := range records {
		f := get(u)
		if f.Rows == 0 {
			continue
		}
		if dim == 0 {
			dim = f.Cols
			continue
		}
		if f.Cols != dim {
			return 0, errors.InvalidInput(string(ch),
				fmt.Sprintf("record %s has %d %s columns, batch has %d", u.ID, f.Cols, ch, dim))
		}
	}
	return dim, nil
}
