package s3

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/kbukum/speechprep/dataset"
	"github.com/kbukum/speechprep/stats"
	"github.com/kbukum/speechprep/storage"
	"github.com/kbukum/speechprep/testutil"
)

const testBucket = "corpora"

// fakeS3 serves the path-style subset of the S3 API the backend uses.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

type listResult struct {
	XMLName     xml.Name      `xml:"ListBucketResult"`
	Name        string        `xml:"Name"`
	Prefix      string        `xml:"Prefix"`
	KeyCount    int           `xml:"KeyCount"`
	IsTruncated bool          `xml:"IsTruncated"`
	Contents    []listContent `xml:"Contents"`
}

type listContent struct {
	Key  string `xml:"Key"`
	Size int    `xml:"Size"`
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != testBucket {
		http.Error(w, "no such bucket", http.StatusNotFound)
		return
	}

	switch {
	case r.Method == http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.objects[key] = body
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && key == "" && r.URL.Query().Get("list-type") == "2":
		prefix := r.URL.Query().Get("prefix")
		res := listResult{Name: bucket, Prefix: prefix}
		for k, v := range f.objects {
			if strings.HasPrefix(k, prefix) {
				res.Contents = append(res.Contents, listContent{Key: k, Size: len(v)})
			}
		}
		sort.Slice(res.Contents, func(i, j int) bool { return res.Contents[i].Key < res.Contents[j].Key })
		res.KeyCount = len(res.Contents)
		w.Header().Set("Content-Type", "application/xml")
		_ = xml.NewEncoder(w).Encode(res)
	case r.Method == http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		_, _ = w.Write(body)
	case r.Method == http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func newTestStorage(t *testing.T) (*Storage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: make(map[string][]byte)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	awsCfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("key", "secret", ""),
	}
	return newWithConfig(awsCfg, storage.S3Config{
		Bucket:   testBucket,
		Prefix:   "blizzard/",
		Region:   "us-east-1",
		Endpoint: srv.URL,
	}), fake
}

func TestUploadDownload(t *testing.T) {
	ctx := context.Background()
	s, fake := newTestStorage(t)

	if err := s.Upload(ctx, "train/a.json", strings.NewReader(`{"id":"a"}`)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, ok := fake.objects["blizzard/train/a.json"]; !ok {
		t.Fatalf("object not stored under the prefix: %v", fake.objects)
	}

	rc, err := s.Download(ctx, "train/a.json")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != `{"id":"a"}` {
		t.Errorf("body = %q", body)
	}

	ok, err := s.Exists(ctx, "train/a.json")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	ok, err = s.Exists(ctx, "train/b.json")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
}

func TestDownloadMissing(t *testing.T) {
	s, _ := newTestStorage(t)
	_, err := s.Download(context.Background(), "stats.yml")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)
	testutil.WriteCorpus(t, s, "train", 3, 6)

	files, err := s.List(ctx, "train/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 3 || files[0].Path != "train/utt-00.json" {
		t.Fatalf("List = %+v", files)
	}

	store, err := dataset.Open(ctx, s, []string{"train"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	u, err := store.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if u.ID != "utt-02" || u.Len() != 6 {
		t.Errorf("got %s with %d steps", u.ID, u.Len())
	}

	if err := stats.Save(ctx, s, "stats.yml", testutil.Stats()); err != nil {
		t.Fatalf("stats.Save: %v", err)
	}
	loaded, err := stats.Load(ctx, s, "stats.yml")
	if err != nil {
		t.Fatalf("stats.Load: %v", err)
	}
	if loaded.F0.Mean[0] != 100 {
		t.Errorf("f0 mean = %v", loaded.F0.Mean[0])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{"valid", storage.Config{Provider: storage.ProviderS3, S3: storage.S3Config{Bucket: "b"}}, false},
		{"missing bucket", storage.Config{Provider: storage.ProviderS3}, true},
		{"half credentials", storage.Config{Provider: storage.ProviderS3, S3: storage.S3Config{Bucket: "b", AccessKey: "k"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ApplyDefaults()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
