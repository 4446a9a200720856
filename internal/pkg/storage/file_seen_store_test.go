package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSeenStore_LoadMissingFileIsEmpty(t *testing.T) {
	store, err := NewFileSeenStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSeenStore: %v", err)
	}

	set, err := store.Load(context.Background(), "over_under")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set, got %v", set)
	}
}

func TestFileSeenStore_AddSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewFileSeenStore(dir)
	if err != nil {
		t.Fatalf("NewFileSeenStore: %v", err)
	}
	if _, err := store.Load(ctx, "over_under"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := store.Add(ctx, "over_under", "42"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add(ctx, "over_under", "7"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A fresh store over the same directory models a process restart.
	reopened, err := NewFileSeenStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	set, err := reopened.Load(ctx, "over_under")
	if err != nil {
		t.Fatalf("Load after restart: %v", err)
	}
	for _, id := range []string{"42", "7"} {
		if _, ok := set[id]; !ok {
			t.Errorf("match id %s lost across restart, set = %v", id, set)
		}
	}
}

func TestFileSeenStore_SetsAreIndependentPerAlert(t *testing.T) {
	store, err := NewFileSeenStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSeenStore: %v", err)
	}
	ctx := context.Background()

	if err := store.Add(ctx, "alert_a", "M1"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	setB, err := store.Load(ctx, "alert_b")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(setB) != 0 {
		t.Errorf("alert_b must not see alert_a's ids, got %v", setB)
	}
}

func TestFileSeenStore_StaleTempFileRemovedOnLoad(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "over_under_seen.json.tmp")
	if err := os.WriteFile(stale, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write stale temp: %v", err)
	}

	store, err := NewFileSeenStore(dir)
	if err != nil {
		t.Fatalf("NewFileSeenStore: %v", err)
	}
	if _, err := store.Load(context.Background(), "over_under"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale temp file should be removed on load")
	}
}
