// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aare-ai/verify-engine/pkg/types"
)

func newTestStore(t *testing.T) *DirStore {
	t.Helper()
	return NewDirStore(types.StoreConfig{Dir: t.TempDir()})
}

func TestStorePutThenLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	data := loadFixture(t)

	published, err := store.Put(ctx, data)
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if published.Name != "mortgage-compliance" {
		t.Fatalf("Put() published %q", published.Name)
	}

	tests := []struct {
		name    string
		version string
	}{
		{"explicit version", "1.2.0"},
		{"latest alias", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ont, err := store.Load(ctx, "mortgage-compliance", tt.version)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if ont.Version != "1.2.0" || len(ont.Constraints) != 2 {
				t.Errorf("loaded v%s with %d constraints, want v1.2.0 with 2", ont.Version, len(ont.Constraints))
			}
		})
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background(), "no-such-ontology", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestStoreLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "broken", "latest")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "ontology.yaml"), []byte("name: broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewDirStore(types.StoreConfig{Dir: dir})
	_, err := store.Load(context.Background(), "broken", "")
	if err == nil {
		t.Fatal("Load() succeeded on malformed document")
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error type %T, want *LoadError", err)
	}
}

func TestStoreLoadUnreadableIsNotMissing(t *testing.T) {
	// ontology.yaml exists but cannot be read as a file; the later
	// filename fallbacks miss, and the read failure must win over
	// their not-found errors.
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "blocked", "latest", "ontology.yaml"), 0o755); err != nil {
		t.Fatal(err)
	}

	store := NewDirStore(types.StoreConfig{Dir: dir})
	_, err := store.Load(context.Background(), "blocked", "")
	if err == nil {
		t.Fatal("Load() succeeded on unreadable document")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want a retrieval failure, not ErrNotFound", err)
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Load() error type %T, want *LoadError", err)
	}
	if le.Reason != "retrieval failed" {
		t.Errorf("Load() reason = %q, want %q", le.Reason, "retrieval failed")
	}
}

func TestStorePutRejectsInvalid(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Put(context.Background(), []byte("version: \"1.0.0\"\n"))
	if err == nil {
		t.Fatal("Put() accepted an invalid document")
	}
	// Nothing may be written for a rejected document.
	infos, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("List() = %d entries after rejected Put, want 0", len(infos))
	}
}

func TestStoreList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Put(ctx, loadFixture(t)); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("List() = %d entries, want 1", len(infos))
	}
	info := infos[0]
	if info.Name != "mortgage-compliance" || info.Version != "1.2.0" || info.Constraints != 2 {
		t.Errorf("List()[0] = %+v", info)
	}
}
