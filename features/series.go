package features

import (
	"fmt"

	"gorgonia.org/tensor"
)

// FloatX selects the element width of float output tensors.
type FloatX string

const (
	Float32 FloatX = "float32"
	Float64 FloatX = "float64"
)

// Validate checks the width name.
func (f FloatX) Validate() error {
	switch f {
	case Float32, Float64:
		return nil
	}
	return fmt.Errorf("float_x must be float32 or float64 (got: %s)", f)
}

// Series is a dense (time, batch, dim) block stored time-major, so cutting
// the time axis is a prefix of Data.
type Series struct {
	Steps int
	Size  int
	Dim   int
	Data  []float64
}

// NewSeries allocates a zeroed series.
func NewSeries(steps, size, dim int) Series {
	return Series{Steps: steps, Size: size, Dim: dim, Data: make([]float64, steps*size*dim)}
}

// Empty reports whether the series was never populated.
func (s Series) Empty() bool { return s.Size == 0 }

// At returns a view of the dim-vector at step t, slot b.
func (s Series) At(t, b int) []float64 {
	off := (t*s.Size + b) * s.Dim
	return s.Data[off : off+s.Dim]
}

// Step returns a view of every slot at step t.
func (s Series) Step(t int) []float64 {
	n := s.Size * s.Dim
	return s.Data[t*n : (t+1)*n]
}

// Head returns a copy of the first steps time steps.
func (s Series) Head(steps int) Series {
	if steps > s.Steps {
		steps = s.Steps
	}
	out := NewSeries(steps, s.Size, s.Dim)
	copy(out.Data, s.Data[:len(out.Data)])
	return out
}

// Clone returns a deep copy.
func (s Series) Clone() Series {
	out := s
	out.Data = append([]float64(nil), s.Data...)
	return out
}

// Shape is (steps, size) for one-dimensional channels, (steps, size, dim) otherwise.
func (s Series) Shape() []int {
	if s.Dim == 1 {
		return []int{s.Steps, s.Size}
	}
	return []int{s.Steps, s.Size, s.Dim}
}

// Tensor copies the series into a dense tensor of the requested width.
func (s Series) Tensor(fx FloatX) *tensor.Dense {
	if fx == Float32 {
		backing := make([]float32, len(s.Data))
		for i, v := range s.Data {
			backing[i] = float32(v)
		}
		return tensor.New(tensor.WithShape(s.Shape()...), tensor.WithBacking(backing))
	}
	return tensor.New(tensor.WithShape(s.Shape()...), tensor.WithBacking(append([]float64(nil), s.Data...)))
}

// Symbols is a zero-padded (batch, length) block of transcript symbols with
// a mask that is 1 for real symbols.
type Symbols struct {
	Size int
	Len  int
	Data []int
	Mask []float64
}

// PadSymbols pads transcripts to the longest one.
func PadSymbols(rows [][]int) Symbols {
	maxLen := 0
	for _, r := range rows {
		if len(r) > maxLen {
			maxLen = len(r)
		}
	}
	s := Symbols{
		Size: len(rows),
		Len:  maxLen,
		Data: make([]int, len(rows)*maxLen),
		Mask: make([]float64, len(rows)*maxLen),
	}
	for b, r := range rows {
		copy(s.Data[b*maxLen:], r)
		for i := range r {
			s.Mask[b*maxLen+i] = 1
		}
	}
	return s
}

// Row returns the unpadded symbols of slot b.
func (s Symbols) Row(b int) []int {
	row := s.Data[b*s.Len : (b+1)*s.Len]
	n := 0
	for _, m := range s.Mask[b*s.Len : (b+1)*s.Len] {
		if m > 0 {
			n++
		}
	}
	return row[:n]
}

// Tensor returns the symbols as an int tensor of shape (batch, length).
func (s Symbols) Tensor() *tensor.Dense {
	return tensor.New(tensor.WithShape(s.Size, s.Len), tensor.WithBacking(append([]int(nil), s.Data...)))
}

// MaskTensor returns the mask as a float tensor of shape (batch, length).
func (s Symbols) MaskTensor(fx FloatX) *tensor.Dense {
	m := Series{Steps: s.Size, Size: s.Len, Dim: 1, Data: s.Mask}
	return m.Tensor(fx)
}
