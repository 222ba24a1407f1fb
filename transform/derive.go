package transform

import (
	"fmt"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/features"
)

// DefaultZeroUnvoiced is the channel set zeroed on unvoiced frames.
var DefaultZeroUnvoiced = []features.Channel{features.F0}

// DeriveVoiced sets b.Voiced to 1 where f0 is positive and 0 elsewhere.
// It must run before f0 is normalized.
func DeriveVoiced(b *features.Batch) *features.Batch {
	b.Voiced = features.NewSeries(b.F0.Steps, b.F0.Size, 1)
	for i, v := range b.F0.Data {
		if v > 0 {
			b.Voiced.Data[i] = 1
		}
	}
	return b
}

// ValidateZeroChannels accepts only acoustic features read from the dataset.
func ValidateZeroChannels(channels []features.Channel) error {
	for _, ch := range channels {
		if !ch.IsFrameFeature() {
			return errors.Configuration("zero_unvoiced", fmt.Sprintf("%s cannot be zeroed on unvoiced frames", ch))
		}
	}
	return nil
}

// ZeroUnvoiced multiplies every frame of the listed channels by voiced.
// Channels the batch does not carry are skipped.
func ZeroUnvoiced(b *features.Batch, channels []features.Channel) (*features.Batch, error) {
	if b.Voiced.Empty() {
		return nil, errors.InvalidInput(string(features.Voiced), "voiced must be derived before zeroing")
	}
	for _, ch := range channels {
		s, ok := b.Series(ch)
		if !ok || s.Empty() {
			continue
		}
		if s.Steps != b.Voiced.Steps || s.Size != b.Voiced.Size {
			return nil, errors.InvalidInput(string(ch),
				fmt.Sprintf("%s is %dx%d, voiced is %dx%d", ch, s.Steps, s.Size, b.Voiced.Steps, b.Voiced.Size))
		}
		for t := 0; t < s.Steps; t++ {
			for slot := 0; slot < s.Size; slot++ {
				if b.Voiced.At(t, slot)[0] == 0 {
					clear(s.At(t, slot))
				}
			}
		}
	}
	return b, nil
}
