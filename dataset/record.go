package dataset

import (
	"fmt"
	"io"
	"math"

	json "github.com/goccy/go-json"

	"github.com/kbukum/speechprep/features"
)

// record is the on-disk form of an utterance.
type record struct {
	ID          string       `json:"id"`
	F0          []*float64   `json:"f0"`
	MGC         [][]*float64 `json:"mgc"`
	Spectrum    [][]*float64 `json:"spectrum"`
	Transcripts []int        `json:"transcripts"`
	VoicingStr  [][]*float64 `json:"voicing_str"`
}

// Decode reads one utterance.
func Decode(r io.Reader) (features.Utterance, error) {
	var rec record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return features.Utterance{}, fmt.Errorf("decode record: %w", err)
	}
	mgc, err := framesFromJSON(rec.MGC)
	if err != nil {
		return features.Utterance{}, fmt.Errorf("decode record %s: mgc: %w", rec.ID, err)
	}
	spectrum, err := framesFromJSON(rec.Spectrum)
	if err != nil {
		return features.Utterance{}, fmt.Errorf("decode record %s: spectrum: %w", rec.ID, err)
	}
	voicing, err := framesFromJSON(rec.VoicingStr)
	if err != nil {
		return features.Utterance{}, fmt.Errorf("decode record %s: voicing_str: %w", rec.ID, err)
	}
	return features.Utterance{
		ID:         rec.ID,
		F0:         vectorFromJSON(rec.F0),
		MGC:        mgc,
		Spectrum:   spectrum,
		Voicing:    voicing,
		Transcript: rec.Transcripts,
	}, nil
}

// Encode writes one utterance.
func Encode(w io.Writer, u features.Utterance) error {
	rec := record{
		ID:          u.ID,
		F0:          vectorToJSON(u.F0),
		MGC:         framesToJSON(u.MGC),
		Spectrum:    framesToJSON(u.Spectrum),
		Transcripts: u.Transcript,
		VoicingStr:  framesToJSON(u.Voicing),
	}
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("encode record %s: %w", u.ID, err)
	}
	return nil
}

func vectorFromJSON(in []*float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	return out
}

func vectorToJSON(in []float64) []*float64 {
	out := make([]*float64, len(in))
	for i := range in {
		if math.IsNaN(in[i]) {
			continue
		}
		v := in[i]
		out[i] = &v
	}
	return out
}

func framesFromJSON(rows [][]*float64) (features.Frames, error) {
	plain := make([][]float64, len(rows))
	for i, r := range rows {
		plain[i] = vectorFromJSON(r)
	}
	return features.FramesFromRows(plain)
}

func framesToJSON(f features.Frames) [][]*float64 {
	plain := f.ToRows()
	rows := make([][]*float64, len(plain))
	for i, r := range plain {
		rows[i] = vectorToJSON(r)
	}
	return rows
}
