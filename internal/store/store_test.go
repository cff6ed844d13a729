package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "store.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "greeting", "hello there"); err != nil {
		t.Fatalf("set: %v", err)
	}

	sn, err := s.Get(ctx, "greeting")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sn == nil || sn.Value != "hello there" {
		t.Fatalf("unexpected snippet: %+v", sn)
	}
}

func TestGet_Missing(t *testing.T) {
	s := testStore(t)

	sn, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sn != nil {
		t.Fatalf("expected nil for a missing key, got %+v", sn)
	}
}

func TestSet_Upserts(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	sn, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sn.Value != "second" {
		t.Fatalf("expected the new value, got %q", sn.Value)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("upsert must not duplicate, got %d rows", len(all))
	}
}

func TestList_OrderedByKey(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, k := range []string{"b", "a", "c"} {
		if err := s.Set(ctx, k, "v"); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 snippets, got %d", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].Key != want {
			t.Fatalf("position %d: got %q, want %q", i, all[i].Key, want)
		}
	}
}
