package stats

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/storage"
)

// MinStd is the smallest standard deviation accepted in any dimension.
const MinStd = 1e-8

// Moments are per-dimension mean and standard deviation vectors. f0 uses
// vectors of length one.
type Moments struct {
	Mean []float64 `yaml:"mean"`
	Std  []float64 `yaml:"std"`
}

// Dim is the number of dimensions described.
func (m Moments) Dim() int { return len(m.Mean) }

func (m Moments) validate(name string) error {
	if len(m.Mean) == 0 {
		return errors.Configuration(name, "mean is empty")
	}
	if len(m.Std) != len(m.Mean) {
		return errors.Configuration(name, fmt.Sprintf("std has %d dimensions, mean has %d", len(m.Std), len(m.Mean)))
	}
	for i, v := range m.Mean {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Configuration(name, fmt.Sprintf("mean[%d] is not finite", i))
		}
	}
	for i, v := range m.Std {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Configuration(name, fmt.Sprintf("std[%d] is not finite", i))
		}
		if !(v >= MinStd) {
			return errors.Configuration(name, fmt.Sprintf("std[%d] must be at least %g (got %g)", i, MinStd, v))
		}
	}
	return nil
}

// Statistics is the artifact consumed by the normalizer.
type Statistics struct {
	F0       Moments  `yaml:"f0"`
	MGC      Moments  `yaml:"mgc"`
	Spectrum Moments  `yaml:"spectrum"`
	Voicing  *Moments `yaml:"voicing_str,omitempty"`
}

// Validate rejects empty, mismatched, non-finite or zero-deviation entries.
func (s *Statistics) Validate() error {
	if s.F0.Dim() != 1 {
		return errors.Configuration("f0", fmt.Sprintf("f0 statistics must be scalar (got %d dimensions)", s.F0.Dim()))
	}
	if err := s.F0.validate("f0"); err != nil {
		return err
	}
	if err := s.MGC.validate("mgc"); err != nil {
		return err
	}
	if err := s.Spectrum.validate("spectrum"); err != nil {
		return err
	}
	if s.Voicing != nil {
		if err := s.Voicing.validate("voicing_str"); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads and validates an artifact.
func Decode(r io.Reader) (*Statistics, error) {
	var s Statistics
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Configuration("stats", "statistics artifact is malformed").WithCause(err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode writes the artifact.
func Encode(w io.Writer, s *Statistics) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode statistics: %w", err)
	}
	return enc.Close()
}

// Load reads the artifact at path from st.
func Load(ctx context.Context, st storage.Storage, path string) (*Statistics, error) {
	rc, err := st.Download(ctx, path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.Configuration("stats_path", fmt.Sprintf("statistics artifact %s is missing", path)).WithCause(err)
		}
		return nil, errors.Internal(err).WithDetail("path", path)
	}
	defer rc.Close() //nolint:errcheck // read-only
	return Decode(rc)
}

// Save validates s and writes it to path in st.
func Save(ctx context.Context, st storage.Storage, path string, s *Statistics) error {
	if err := s.Validate(); err != nil {
		return err
	}
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(Encode(pw, s))
	}()
	err := st.Upload(ctx, path, pr)
	_ = pr.Close()
	return err
}
