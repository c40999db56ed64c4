package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/ntarasov/cloudpipe/internal/ports"
)

func TestPutGetList(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.EnsureBucket(ctx, "raw"); err != nil {
		t.Fatalf("ensure bucket: %v", err)
	}
	if err := s.Put(ctx, "raw", "raw/a.csv", []byte("a"), "text/csv"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "raw", "stats/b.csv", []byte("b"), "text/csv"); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "raw", "raw/a.csv")
	if err != nil || string(got) != "a" {
		t.Fatalf("get: %q err=%v", got, err)
	}

	keys, err := s.List(ctx, "raw", "raw/")
	if err != nil || len(keys) != 1 || keys[0] != "raw/a.csv" {
		t.Fatalf("list: %v err=%v", keys, err)
	}

	all, err := s.List(ctx, "raw", "")
	if err != nil || len(all) != 2 {
		t.Fatalf("list all: %v err=%v", all, err)
	}
}

func TestGet_MissingObject(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.EnsureBucket(ctx, "raw")

	if _, err := s.Get(ctx, "raw", "nope.csv"); !errors.Is(err, ports.ErrObjectNotFound) {
		t.Fatalf("want ErrObjectNotFound, got %v", err)
	}
	if _, err := s.Get(ctx, "missing-bucket", "x"); !errors.Is(err, ports.ErrObjectNotFound) {
		t.Fatalf("want ErrObjectNotFound for missing bucket, got %v", err)
	}
}

func TestEnsureBucket_Idempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.EnsureBucket(ctx, "raw")
	_ = s.Put(ctx, "raw", "k", []byte("v"), "")

	// Повторный EnsureBucket не должен стирать содержимое.
	if err := s.EnsureBucket(ctx, "raw"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got, err := s.Get(ctx, "raw", "k"); err != nil || string(got) != "v" {
		t.Fatalf("content lost after re-ensure: %q err=%v", got, err)
	}
}
