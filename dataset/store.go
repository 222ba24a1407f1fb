package dataset

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/speechprep/errors"
	"github.com/kbukum/speechprep/features"
	"github.com/kbukum/speechprep/observability"
	"github.com/kbukum/speechprep/storage"
)

// Store gives random access to the utterances of one or more splits.
type Store interface {
	// Len is the number of utterances available.
	Len() int
	// Get loads utterance i, 0 <= i < Len().
	Get(ctx context.Context, i int) (features.Utterance, error)
}

const recordExt = ".json"

// ObjectStore reads records lazily from a storage backend.
type ObjectStore struct {
	st    storage.Storage
	paths []string
}

// Open indexes every record of the given splits. Splits are concatenated in
// the order given; records within a split are in path order.
func Open(ctx context.Context, st storage.Storage, splits []string) (*ObjectStore, error) {
	if len(splits) == 0 {
		return nil, errors.Configuration("which_sets", "at least one split is required")
	}
	ctx, span := observability.StartSpan(ctx, observability.SpanDatasetOpen,
		attribute.StringSlice(observability.AttrSplits, splits))
	defer span.End()

	s, err := index(ctx, st, splits)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	observability.Annotate(ctx, attribute.Int(observability.AttrRecords, s.Len()))
	return s, nil
}

func index(ctx context.Context, st storage.Storage, splits []string) (*ObjectStore, error) {
	s := &ObjectStore{st: st}
	for _, split := range splits {
		files, err := st.List(ctx, strings.TrimSuffix(split, "/")+"/")
		if err != nil {
			return nil, errors.Internal(err).WithDetail("split", split)
		}
		n := 0
		for _, f := range files {
			if path.Ext(f.Path) == recordExt {
				s.paths = append(s.paths, f.Path)
				n++
			}
		}
		if n == 0 {
			return nil, errors.NotFound("split", split)
		}
	}
	return s, nil
}

// Len implements Store.
func (s *ObjectStore) Len() int { return len(s.paths) }

// Get implements Store.
func (s *ObjectStore) Get(ctx context.Context, i int) (features.Utterance, error) {
	if i < 0 || i >= len(s.paths) {
		return features.Utterance{}, errors.InvalidInput("index", fmt.Sprintf("record %d out of range [0,%d)", i, len(s.paths)))
	}
	rc, err := s.st.Download(ctx, s.paths[i])
	if err != nil {
		return features.Utterance{}, errors.Internal(err).WithDetail("path", s.paths[i])
	}
	defer rc.Close() //nolint:errcheck // read-only
	u, err := Decode(rc)
	if err != nil {
		return features.Utterance{}, errors.MalformedRecord(s.paths[i], "undecodable record").WithCause(err)
	}
	if u.ID == "" {
		u.ID = strings.TrimSuffix(path.Base(s.paths[i]), recordExt)
	}
	return u, nil
}

// Write stores u under split using the record format Open reads.
func Write(ctx context.Context, st storage.Storage, split string, u features.Utterance) error {
	if u.ID == "" {
		return errors.InvalidInput("id", "record id is required")
	}
	var buf bytes.Buffer
	if err := Encode(&buf, u); err != nil {
		return err
	}
	return st.Upload(ctx, path.Join(split, u.ID+recordExt), &buf)
}

// MemoryStore serves utterances held in memory.
type MemoryStore struct {
	items []features.Utterance
}

// NewMemoryStore wraps a slice of utterances.
func NewMemoryStore(items []features.Utterance) *MemoryStore {
	return &MemoryStore{items: items}
}

// Len implements Store.
func (m *MemoryStore) Len() int { return len(m.items) }

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, i int) (features.Utterance, error) {
	if err := ctx.Err(); err != nil {
		return features.Utterance{}, err
	}
	if i < 0 || i >= len(m.items) {
		return features.Utterance{}, errors.InvalidInput("index", fmt.Sprintf("record %d out of range [0,%d)", i, len(m.items)))
	}
	return m.items[i], nil
}
