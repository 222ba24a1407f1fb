package features

import "fmt"

// Utterance is one record of the corpus. F0, MGC, Spectrum and Voicing are
// time aligned; Transcript is a symbol sequence with its own length.
type Utterance struct {
	ID         string
	F0         []float64
	MGC        Frames
	Spectrum   Frames
	Voicing    Frames
	Transcript []int
}

// Len is the number of time steps, taken from f0.
func (u Utterance) Len() int { return len(u.F0) }

// Validate checks that the time-aligned arrays share one length.
func (u Utterance) Validate() error {
	n := len(u.F0)
	for _, c := range []struct {
		ch   Channel
		rows int
	}{{MGC, u.MGC.Rows}, {Spectrum, u.Spectrum.Rows}, {Voicing, u.Voicing.Rows}} {
		if c.rows != n {
			return fmt.Errorf("%s has %d steps, f0 has %d", c.ch, c.rows, n)
		}
	}
	return nil
}

// Head returns a copy truncated to the first n steps. The transcript is shared.
func (u Utterance) Head(n int) Utterance {
	if n > len(u.F0) {
		n = len(u.F0)
	}
	return Utterance{
		ID:         u.ID,
		F0:         append([]float64(nil), u.F0[:n]...),
		MGC:        u.MGC.Head(n),
		Spectrum:   u.Spectrum.Head(n),
		Voicing:    u.Voicing.Head(n),
		Transcript: u.Transcript,
	}
}
