package transform

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/stats"
)

// Normalizer standardizes feature channels with precomputed global moments:
// x*scale + shift with scale = 1/std and shift = -mean/std.
type Normalizer struct {
	channels []features.Channel
	params   map[features.Channel]affine
}

type affine struct {
	mean, std    []float64
	scale, shift []float64
}

func newAffine(m stats.Moments) affine {
	a := affine{
		mean:  append([]float64(nil), m.Mean...),
		std:   append([]float64(nil), m.Std...),
		scale: make([]float64, len(m.Std)),
		shift: make([]float64, len(m.Std)),
	}
	for i := range a.std {
		a.scale[i] = 1 / a.std[i]
		a.shift[i] = -a.mean[i] / a.std[i]
	}
	return a
}

// NewNormalizer validates s and precomputes the affine parameters for f0,
// mgc and spectrum, plus voicing_str when normalizeVoicing is set.
func NewNormalizer(s *stats.Statistics, normalizeVoicing bool) (*Normalizer, error) {
	if s == nil {
		return nil, errors.Configuration("stats", "statistics are required")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := &Normalizer{
		channels: []features.Channel{features.Spectrum, features.F0, features.MGC},
		params: map[features.Channel]affine{
			features.F0:       newAffine(s.F0),
			features.MGC:      newAffine(s.MGC),
			features.Spectrum: newAffine(s.Spectrum),
		},
	}
	if normalizeVoicing {
		if s.Voicing == nil {
			return nil, errors.Configuration("normalize_voicing", "statistics carry no voicing_str moments")
		}
		n.channels = append(n.channels, features.Voicing)
		n.params[features.Voicing] = newAffine(*s.Voicing)
	}
	return n, nil
}

// Channels lists the normalized channels.
func (n *Normalizer) Channels() []features.Channel { return n.channels }

// Apply normalizes b in place.
func (n *Normalizer) Apply(b *features.Batch) (*features.Batch, error) {
	return b, n.each(b, func(v []float64, a affine) {
		floats.Mul(v, a.scale)
		floats.Add(v, a.shift)
	})
}

// Invert maps normalized values back: x*std + mean.
func (n *Normalizer) Invert(b *features.Batch) (*features.Batch, error) {
	return b, n.each(b, func(v []float64, a affine) {
		floats.Mul(v, a.std)
		floats.Add(v, a.mean)
	})
}

func (n *Normalizer) each(b *features.Batch, fn func([]float64, affine)) error {
	for _, ch := range n.channels {
		s, _ := b.Series(ch)
		if s.Empty() {
			continue
		}
		a := n.params[ch]
		if s.Dim != len(a.scale) {
			return errors.InvalidInput(string(ch),
				fmt.Sprintf("%s has dimension %d, statistics have %d", ch, s.Dim, len(a.scale)))
		}
		for off := 0; off < len(s.Data); off += s.Dim {
			fn(s.Data[off:off+s.Dim], a)
		}
	}
	return nil
}
