package transform

import (
	"fmt"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/features"
)

// Policy selects the length every sequence of a batch is cut to.
type Policy string

const (
	// PolicyFirst cuts to the real length of the first slot. After the
	// ascending sort this is also the shortest.
	PolicyFirst Policy = "first"
	// PolicyMin cuts to the shortest real length in the batch.
	PolicyMin Policy = "min"
)

// ParsePolicy validates a policy name. The empty string selects PolicyFirst.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case "", PolicyFirst:
		return PolicyFirst, nil
	case PolicyMin:
		return PolicyMin, nil
	}
	return "", errors.Configuration("equalize", fmt.Sprintf("unknown equalize policy %q", name))
}

// Lengths returns the real length of every slot, read from F0Mask.
func Lengths(b *features.Batch) []int {
	lengths := make([]int, b.F0Mask.Size)
	for t := 0; t < b.F0Mask.Steps; t++ {
		for slot, m := range b.F0Mask.Step(t) {
			if m > 0 {
				lengths[slot]++
			}
		}
	}
	return lengths
}

// Equalize returns a batch whose time series, F0Mask included, are cut to
// the length chosen by policy. Transcripts and their mask are kept whole;
// b is left unchanged.
func Equalize(b *features.Batch, policy Policy) *features.Batch {
	out := *b
	lengths := Lengths(b)
	if len(lengths) == 0 {
		return &out
	}
	idx := lengths[0]
	if policy == PolicyMin {
		for _, l := range lengths[1:] {
			idx = min(idx, l)
		}
	}
	for _, ch := range features.AllChannels {
		s, ok := out.Series(ch)
		if !ok || s.Empty() {
			continue
		}
		*s = s.Head(idx)
	}
	return &out
}
