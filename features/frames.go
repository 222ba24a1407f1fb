package features

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Frames is a dense (time x dim) block stored row-major.
type Frames struct {
	Rows int
	Cols int
	Data []float64
}

// NewFrames allocates a zeroed block.
func NewFrames(rows, cols int) Frames {
	return Frames{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// FramesFromRows copies a slice of rows. All rows must share one width.
func FramesFromRows(rows [][]float64) (Frames, error) {
	if len(rows) == 0 {
		return Frames{}, nil
	}
	cols := len(rows[0])
	f := NewFrames(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return Frames{}, fmt.Errorf("row %d has %d columns, want %d", i, len(r), cols)
		}
		copy(f.Row(i), r)
	}
	return f, nil
}

// Row returns a view of row i.
func (f Frames) Row(i int) []float64 {
	return f.Data[i*f.Cols : (i+1)*f.Cols]
}

// Head returns a copy of the first n rows.
func (f Frames) Head(n int) Frames {
	if n > f.Rows {
		n = f.Rows
	}
	out := NewFrames(n, f.Cols)
	copy(out.Data, f.Data[:n*f.Cols])
	return out
}

// RowHasNaN reports whether row i contains a NaN.
func (f Frames) RowHasNaN(i int) bool {
	return floats.HasNaN(f.Row(i))
}

// HasNaN reports whether any of the first n rows contains a NaN.
func (f Frames) HasNaN(n int) bool {
	if n > f.Rows {
		n = f.Rows
	}
	return floats.HasNaN(f.Data[:n*f.Cols])
}

// ToRows copies the block into a slice of rows.
func (f Frames) ToRows() [][]float64 {
	rows := make([][]float64, f.Rows)
	for i := range rows {
		rows[i] = append([]float64(nil), f.Row(i)...)
	}
	return rows
}
