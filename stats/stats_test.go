package stats

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/pipeline"
	"github.com/kbukum/speechprep/storage/local"
)

func validStats() *Statistics {
	return &Statistics{
		F0:       Moments{Mean: []float64{50}, Std: []float64{10}},
		MGC:      Moments{Mean: []float64{0, 1}, Std: []float64{1, 2}},
		Spectrum: Moments{Mean: []float64{3}, Std: []float64{4}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Statistics)
		wantErr bool
	}{
		{"valid", func(*Statistics) {}, false},
		{"vector f0", func(s *Statistics) { s.F0 = Moments{Mean: []float64{1, 2}, Std: []float64{1, 1}} }, true},
		{"zero std", func(s *Statistics) { s.MGC.Std[1] = 0 }, true},
		{"tiny std", func(s *Statistics) { s.Spectrum.Std[0] = 1e-12 }, true},
		{"negative std", func(s *Statistics) { s.MGC.Std[0] = -2 }, true},
		{"negative tiny std", func(s *Statistics) { s.F0.Std[0] = -1e-12 }, true},
		{"nan mean", func(s *Statistics) { s.MGC.Mean[0] = math.NaN() }, true},
		{"inf std", func(s *Statistics) { s.F0.Std[0] = math.Inf(1) }, true},
		{"length mismatch", func(s *Statistics) { s.MGC.Std = []float64{1} }, true},
		{"empty spectrum", func(s *Statistics) { s.Spectrum = Moments{} }, true},
		{"bad voicing", func(s *Statistics) { s.Voicing = &Moments{Mean: []float64{0}, Std: []float64{0}} }, true},
		{"good voicing", func(s *Statistics) { s.Voicing = &Moments{Mean: []float64{0}, Std: []float64{1}} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStats()
			tt.mutate(s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsCode(err, errors.ErrCodeConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	doc := `
f0:
  mean: [50]
  std: [10]
mgc:
  mean: [0, 1]
  std: [1, 2]
spectrum:
  mean: [3]
  std: [4]
`
	s, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.F0.Mean[0] != 50 || s.MGC.Std[1] != 2 || s.Voicing != nil {
		t.Errorf("unexpected statistics: %+v", s)
	}

	if _, err := Decode(strings.NewReader("f0: [")); !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Errorf("malformed yaml: expected configuration error, got %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	in := validStats()
	in.Voicing = &Moments{Mean: []float64{0.5}, Std: []float64{0.25}}
	var buf bytes.Buffer
	if err := Encode(&buf, in); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "voicing_str:") {
		t.Errorf("expected voicing_str key in %q", buf.String())
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Voicing == nil || out.Voicing.Std[0] != 0.25 {
		t.Errorf("voicing not preserved: %+v", out.Voicing)
	}
}

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	st, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	if _, err := Load(ctx, st, "stats.yml"); !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Fatalf("missing artifact: expected configuration error, got %v", err)
	}

	if err = Save(ctx, st, "stats.yml", validStats()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s, err := Load(ctx, st, "stats.yml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Spectrum.Mean[0] != 3 {
		t.Errorf("spectrum mean = %v, want 3", s.Spectrum.Mean[0])
	}

	bad := validStats()
	bad.F0.Std[0] = 0
	if err := Save(ctx, st, "bad.yml", bad); err == nil {
		t.Error("expected Save to reject invalid statistics")
	}
}

func utterance(id string, f0 []float64, mgc [][]float64) features.Utterance {
	m, _ := features.FramesFromRows(mgc)
	spec := make([][]float64, len(f0))
	voicing := make([][]float64, len(f0))
	for i, v := range f0 {
		spec[i] = []float64{v / 10}
		voicing[i] = []float64{0}
		if v > 0 {
			voicing[i][0] = 1
		}
	}
	s, _ := features.FramesFromRows(spec)
	v, _ := features.FramesFromRows(voicing)
	return features.Utterance{ID: id, F0: f0, MGC: m, Spectrum: s, Voicing: v}
}

func TestCompute(t *testing.T) {
	items := []features.Utterance{
		// voiced f0 {40, 60}: mean 50, std 10
		utterance("a", []float64{40, 0, 60}, [][]float64{{0, 1}, {2, 1}, {4, 1}}),
		// voiced f0 {100}: mean 100, std 0
		utterance("b", []float64{100, 0}, [][]float64{{1, 3}, {1, 5}}),
		// no voiced frames: skipped for f0
		utterance("c", []float64{0}, [][]float64{{7, 7}}),
	}
	s, err := Compute(context.Background(), pipeline.FromSlice(items))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got := s.F0.Mean[0]; math.Abs(got-75) > 1e-9 {
		t.Errorf("f0 mean = %v, want 75", got)
	}
	if got := s.F0.Std[0]; math.Abs(got-5) > 1e-9 {
		t.Errorf("f0 std = %v, want 5", got)
	}
	// mgc column 0 means: 2, 1, 7
	if got := s.MGC.Mean[0]; math.Abs(got-10.0/3) > 1e-9 {
		t.Errorf("mgc mean[0] = %v, want 10/3", got)
	}
	// mgc column 1 stds: 0, 1, 0
	if got := s.MGC.Std[1]; math.Abs(got-1.0/3) > 1e-9 {
		t.Errorf("mgc std[1] = %v, want 1/3", got)
	}
	if s.Voicing == nil || len(s.Voicing.Mean) != 1 {
		t.Errorf("expected voicing moments, got %+v", s.Voicing)
	}
}

func TestCompute_NoVoicedFrames(t *testing.T) {
	items := []features.Utterance{utterance("a", []float64{0, 0}, [][]float64{{1}, {2}})}
	_, err := Compute(context.Background(), pipeline.FromSlice(items))
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestAccumulator_DimensionMismatch(t *testing.T) {
	acc := NewAccumulator()
	if err := acc.Add(utterance("a", []float64{10}, [][]float64{{1, 2}})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := acc.Add(utterance("b", []float64{10}, [][]float64{{1, 2, 3}}))
	if !errors.IsCode(err, errors.ErrCodeMalformedRecord) {
		t.Fatalf("expected malformed record error, got %v", err)
	}
}
