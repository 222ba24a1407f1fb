package stats

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/pipeline"
)

// Accumulator collects per-utterance moments. The artifact is the average of
// those moments across utterances, matching the offline pass the corpus
// statistics were first produced with.
type Accumulator struct {
	f0       moments
	mgc      moments
	spectrum moments
	voicing  moments
	records  int
}

type moments struct {
	name  string
	means [][]float64
	stds  [][]float64
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		f0:       moments{name: "f0"},
		mgc:      moments{name: "mgc"},
		spectrum: moments{name: "spectrum"},
		voicing:  moments{name: "voicing_str"},
	}
}

// Add folds one cleaned utterance in. f0 only contributes when the utterance
// has voiced frames; empty utterances contribute nothing.
func (a *Accumulator) Add(u features.Utterance) error {
	if err := u.Validate(); err != nil {
		return errors.MalformedRecord(u.ID, err.Error())
	}
	a.records++
	if u.Len() == 0 {
		return nil
	}

	var voiced []float64
	for _, v := range u.F0 {
		if v > 0 {
			voiced = append(voiced, v)
		}
	}
	if len(voiced) > 0 {
		m, s := stat.PopMeanStdDev(voiced, nil)
		if err := a.f0.add([]float64{m}, []float64{s}); err != nil {
			return err
		}
	}

	for _, c := range []struct {
		acc *moments
		f   features.Frames
	}{{&a.mgc, u.MGC}, {&a.spectrum, u.Spectrum}, {&a.voicing, u.Voicing}} {
		if c.f.Cols == 0 {
			continue
		}
		m, s := columnMoments(c.f)
		if err := c.acc.add(m, s); err != nil {
			return errors.MalformedRecord(u.ID, err.Error())
		}
	}
	return nil
}

// Statistics averages the collected moments.
func (a *Accumulator) Statistics() (*Statistics, error) {
	if a.f0.empty() {
		return nil, errors.InvalidInput("f0", fmt.Sprintf("no voiced frames in %d records", a.records))
	}
	if a.mgc.empty() || a.spectrum.empty() {
		return nil, errors.InvalidInput("records", "no frames to compute statistics from")
	}
	s := &Statistics{
		F0:       a.f0.average(),
		MGC:      a.mgc.average(),
		Spectrum: a.spectrum.average(),
	}
	if !a.voicing.empty() {
		v := a.voicing.average()
		s.Voicing = &v
	}
	return s, nil
}

// Compute runs one pass over p and returns the averaged statistics. The
// result is not validated; a constant feature yields a zero deviation that
// Validate rejects.
func Compute(ctx context.Context, p *pipeline.Pipeline[features.Utterance]) (*Statistics, error) {
	reduced := pipeline.Reduce(p, NewAccumulator(), func(acc *Accumulator, u features.Utterance) (*Accumulator, error) {
		return acc, acc.Add(u)
	})
	out, err := pipeline.Collect(ctx, reduced)
	if err != nil {
		return nil, err
	}
	return out[0].Statistics()
}

func columnMoments(f features.Frames) (means, stds []float64) {
	m := mat.NewDense(f.Rows, f.Cols, f.Data)
	means = make([]float64, f.Cols)
	stds = make([]float64, f.Cols)
	col := make([]float64, f.Rows)
	for j := 0; j < f.Cols; j++ {
		mat.Col(col, j, m)
		means[j], stds[j] = stat.PopMeanStdDev(col, nil)
	}
	return means, stds
}

func (m *moments) add(mean, std []float64) error {
	if len(m.means) > 0 && len(m.means[0]) != len(mean) {
		return fmt.Errorf("%s has %d dimensions, earlier records had %d", m.name, len(mean), len(m.means[0]))
	}
	m.means = append(m.means, mean)
	m.stds = append(m.stds, std)
	return nil
}

func (m *moments) empty() bool { return len(m.means) == 0 }

func (m *moments) average() Moments {
	dim := len(m.means[0])
	out := Moments{Mean: make([]float64, dim), Std: make([]float64, dim)}
	for i := range m.means {
		floats.Add(out.Mean, m.means[i])
		floats.Add(out.Std, m.stds[i])
	}
	n := 1 / float64(len(m.means))
	floats.Scale(n, out.Mean)
	floats.Scale(n, out.Std)
	return out
}
