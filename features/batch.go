package features

import "gorgonia.org/tensor"

// Batch holds one padded batch or one segment cut from it. All series are
// time-major and share Size; Voiced and StartFlag are filled by later stages.
type Batch struct {
	IDs         []string
	F0          Series
	F0Mask      Series
	MGC         Series
	Spectrum    Series
	Voicing     Series
	Voiced      Series
	StartFlag   Series
	Transcripts Symbols
}

// Size is the number of slots in the batch.
func (b *Batch) Size() int { return b.F0.Size }

// Steps is the time length of the batch.
func (b *Batch) Steps() int { return b.F0.Steps }

// Series returns a pointer to the series backing a time-series channel.
func (b *Batch) Series(ch Channel) (*Series, bool) {
	switch ch {
	case F0:
		return &b.F0, true
	case F0Mask:
		return &b.F0Mask, true
	case MGC:
		return &b.MGC, true
	case Spectrum:
		return &b.Spectrum, true
	case Voicing:
		return &b.Voicing, true
	case Voiced:
		return &b.Voiced, true
	case StartFlag:
		return &b.StartFlag, true
	}
	return nil, false
}

// Output is the named collection of tensors handed to a consumer.
type Output struct {
	Sources []Channel
	Tensors map[Channel]*tensor.Dense
}

// Get returns the tensor for a source.
func (o *Output) Get(ch Channel) (*tensor.Dense, bool) {
	t, ok := o.Tensors[ch]
	return t, ok
}

// Select converts the requested channels of a batch into tensors. Channels
// the batch never populated are reported as missing.
func Select(b *Batch, sources []Channel, fx FloatX) (*Output, []Channel) {
	out := &Output{Sources: sources, Tensors: make(map[Channel]*tensor.Dense, len(sources))}
	var missing []Channel
	for _, ch := range sources {
		switch ch {
		case Transcripts:
			out.Tensors[ch] = b.Transcripts.Tensor()
		case TranscriptsMask:
			out.Tensors[ch] = b.Transcripts.MaskTensor(fx)
		default:
			s, ok := b.Series(ch)
			if !ok || s.Empty() {
				missing = append(missing, ch)
				continue
			}
			out.Tensors[ch] = s.Tensor(fx)
		}
	}
	return out, missing
}
