//go:build cgo

package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ceylonmate/culture-kb/internal/storage"
)

func newTestSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	store, err := storage.NewSQLite(filepath.Join(t.TempDir(), "knowledge.db"), storage.DefaultCollection, testDims)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStorage(t *testing.T) {
	exerciseStorage(t, newTestSQLite(t))
}

func TestSQLiteStorage_Search(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	for _, d := range testDocs {
		if _, err := store.Insert(ctx, d); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	results, err := store.Search(ctx, embeddingAt(1), storage.SearchOpts{Limit: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Category != "Dancing" {
		t.Errorf("expected closest match 'Dancing', got %q", results[0].Category)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("expected results ordered by score, got %v then %v", results[0].Score, results[1].Score)
	}
}

func TestSQLiteStorage_SearchCategory(t *testing.T) {
	store := newTestSQLite(t)
	ctx := context.Background()

	for _, d := range testDocs {
		if _, err := store.Insert(ctx, d); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	results, err := store.Search(ctx, embeddingAt(1), storage.SearchOpts{Limit: 5, Category: "Cooking"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Category != "Cooking" {
			t.Errorf("expected only Cooking results, got %q", r.Category)
		}
	}
}

func TestSQLiteStorage_RejectsWrongDimensions(t *testing.T) {
	store := newTestSQLite(t)

	doc := testDocs[0]
	doc.Embedding = make([]float32, 384)
	if _, err := store.Insert(context.Background(), doc); err == nil {
		t.Error("expected error inserting a 384-dimension vector into a 768-dimension table")
	}
}
