package transform

import (
	"context"
	"fmt"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/pipeline"
)

// SegmentOptions tune the segmenter.
type SegmentOptions struct {
	// ReturnLast emits the trailing partial window at the end of the
	// stream when it holds at least two steps.
	ReturnLast bool
	// ShareValue is accepted for configuration parity. Flags are always
	// allocated per segment.
	ShareValue bool
}

// carried lists the channels cut into segments, in output order.
var carried = []features.Channel{features.F0, features.F0Mask, features.MGC, features.Spectrum, features.Voicing}

// Segmenter cuts a stream of equalized batches into fixed windows. Each
// batch slot keeps its own carry buffer; when a slot runs short the next
// batch is appended to it. Consecutive windows share one step, so the last
// step of a segment is the first step of the next one.
type Segmenter struct {
	source pipeline.Iterator[*features.Batch]
	window int
	opts   SegmentOptions

	size    int
	dims    map[features.Channel]int
	slots   []*slotBuffer
	drained bool
	done    bool
}

type span struct {
	start      int
	id         string
	transcript []int
}

type slotBuffer struct {
	data  map[features.Channel][]float64
	flags []float64
	spans []span
}

func (s *slotBuffer) steps() int { return len(s.flags) }

// NewSegmenter returns a segmenter emitting windows of window steps. The
// start_flag series of each segment has window-1 steps.
func NewSegmenter(source pipeline.Iterator[*features.Batch], window int, opts SegmentOptions) *Segmenter {
	return &Segmenter{source: source, window: window, opts: opts}
}

// Stage adapts the segmenter for pipeline.Through.
func Stage(window int, opts SegmentOptions) func(pipeline.Iterator[*features.Batch]) pipeline.Iterator[*features.Batch] {
	return func(source pipeline.Iterator[*features.Batch]) pipeline.Iterator[*features.Batch] {
		return NewSegmenter(source, window, opts)
	}
}

// ValidateWindow rejects windows that cannot overlap by one step.
func ValidateWindow(window int) error {
	if window < 2 {
		return errors.Configuration("seq_length", fmt.Sprintf("segment window must be at least 2 (got %d)", window))
	}
	return nil
}

// Next returns the next segment.
func (s *Segmenter) Next(ctx context.Context) (*features.Batch, bool, error) {
	for !s.done {
		if s.size > 0 && s.minSteps() >= s.window {
			return s.emit(s.window), true, nil
		}
		if s.drained {
			s.done = true
			if s.opts.ReturnLast && s.size > 0 {
				if n := s.minSteps(); n >= 2 {
					return s.emit(n), true, nil
				}
			}
			break
		}

		b, ok, err := s.source.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			s.drained = true
			continue
		}
		if err := s.append(b); err != nil {
			return nil, false, err
		}
	}
	return nil, false, nil
}

// Close closes the upstream iterator.
func (s *Segmenter) Close() error { return s.source.Close() }

func (s *Segmenter) minSteps() int {
	n := s.slots[0].steps()
	for _, slot := range s.slots[1:] {
		n = min(n, slot.steps())
	}
	return n
}

func (s *Segmenter) append(b *features.Batch) error {
	if s.size == 0 {
		if b.Size() == 0 {
			return errors.InvalidInput("batch", "segmenter received a batch with no slots")
		}
		s.size = b.Size()
		s.dims = make(map[features.Channel]int, len(carried))
		for _, ch := range carried {
			if series, _ := b.Series(ch); !series.Empty() {
				s.dims[ch] = series.Dim
			}
		}
		s.slots = make([]*slotBuffer, s.size)
		for i := range s.slots {
			s.slots[i] = &slotBuffer{data: make(map[features.Channel][]float64, len(s.dims))}
		}
	}

	if b.Size() != s.size {
		return errors.InvalidInput("batch", fmt.Sprintf("batch has %d slots, stream started with %d", b.Size(), s.size))
	}
	for _, ch := range carried {
		series, _ := b.Series(ch)
		dim, want := s.dims[ch]
		if series.Empty() != !want || (want && series.Dim != dim) {
			return errors.InvalidInput(string(ch), fmt.Sprintf("%s layout changed between batches", ch))
		}
		if want && series.Steps != b.Steps() {
			return errors.InvalidInput(string(ch), fmt.Sprintf("%s has %d steps, batch has %d", ch, series.Steps, b.Steps()))
		}
	}

	steps := b.Steps()
	for i, slot := range s.slots {
		if steps == 0 {
			continue
		}
		for ch := range s.dims {
			series, _ := b.Series(ch)
			for t := 0; t < steps; t++ {
				slot.data[ch] = append(slot.data[ch], series.At(t, i)...)
			}
		}
		sp := span{start: slot.steps()}
		if i < len(b.IDs) {
			sp.id = b.IDs[i]
		}
		if b.Transcripts.Size > i {
			sp.transcript = b.Transcripts.Row(i)
		}
		slot.spans = append(slot.spans, sp)
		slot.flags = append(slot.flags, 1)
		slot.flags = append(slot.flags, make([]float64, steps-1)...)
	}
	return nil
}

// emit cuts n steps from every slot and advances the buffers by n-1.
func (s *Segmenter) emit(n int) *features.Batch {
	out := &features.Batch{
		IDs:       make([]string, s.size),
		StartFlag: features.NewSeries(n-1, s.size, 1),
	}
	for ch, dim := range s.dims {
		series := features.NewSeries(n, s.size, dim)
		for i, slot := range s.slots {
			src := slot.data[ch]
			for t := 0; t < n; t++ {
				copy(series.At(t, i), src[t*dim:(t+1)*dim])
			}
		}
		dst, _ := out.Series(ch)
		*dst = series
	}

	transcripts := make([][]int, s.size)
	for i, slot := range s.slots {
		for t := 0; t < n-1; t++ {
			out.StartFlag.At(t, i)[0] = slot.flags[t]
		}
		cur := slot.current()
		out.IDs[i] = cur.id
		transcripts[i] = cur.transcript
		slot.advance(n-1, s.dims)
	}
	out.Transcripts = features.PadSymbols(transcripts)
	return out
}

// current is the span covering the first buffered step.
func (s *slotBuffer) current() span {
	cur := s.spans[0]
	for _, sp := range s.spans[1:] {
		if sp.start > 0 {
			break
		}
		cur = sp
	}
	return cur
}

func (s *slotBuffer) advance(k int, dims map[features.Channel]int) {
	for ch, dim := range dims {
		s.data[ch] = s.data[ch][k*dim:]
	}
	s.flags = s.flags[k:]
	kept := s.spans[:0]
	for i, sp := range s.spans {
		sp.start -= k
		if sp.start <= 0 && i+1 < len(s.spans) && s.spans[i+1].start-k <= 0 {
			continue
		}
		kept = append(kept, sp)
	}
	s.spans = kept
}
