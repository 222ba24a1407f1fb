package local

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/kbukum/speechprep/logger"
	"github.com/kbukum/speechprep/storage"
)

func TestUploadDownload(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Upload(ctx, "train/a.json", strings.NewReader(`{"id":"a"}`)); err != nil {
		t.Fatal(err)
	}
	rc, err := s.Download(ctx, "train/a.json")
	if err != nil {
		t.Fatal(err)
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
	ok, _ = s.Exists(ctx, "train/missing.json")
	if ok {
		t.Error("missing file reported as existing")
	}
}

func TestDownloadMissing(t *testing.T) {
	s, _ := NewStorage(t.TempDir())
	_, err := s.Download(context.Background(), "nope.yaml")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestPathsStayUnderBase(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStorage(t.TempDir())
	if err := s.Upload(ctx, "../../escape.txt", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}
	files, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Path != "escape.txt" {
		t.Errorf("files = %+v", files)
	}
}

func TestListPrefix(t *testing.T) {
	ctx := context.Background()
	s, _ := NewStorage(t.TempDir())
	for _, p := range []string{"train/b.json", "train/a.json", "valid/c.json", "stats.yaml"} {
		if err := s.Upload(ctx, p, strings.NewReader("{}")); err != nil {
			t.Fatal(err)
		}
	}

	files, err := s.List(ctx, "train/")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Path != "train/a.json" || files[1].Path != "train/b.json" {
		t.Errorf("files = %+v", files)
	}

	files, err = s.List(ctx, "test/")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %+v", files)
	}
}

func TestFactoryRegistered(t *testing.T) {
	st, err := storage.New(storage.Config{BasePath: t.TempDir()}, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*Storage); !ok {
		t.Errorf("expected *local.Storage, got %T", st)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := storage.Config{Provider: "s3"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected unsupported provider error")
	}
}
