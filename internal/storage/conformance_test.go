package storage_test

import (
	"context"
	"testing"

	"github.com/ceylonmate/culture-kb/internal/storage"
	"github.com/ceylonmate/culture-kb/internal/types"
)

const testDims = 768

func embeddingAt(i int) []float32 {
	v := make([]float32, testDims)
	v[i%testDims] = 1
	return v
}

var testDocs = []types.Document{
	{Category: "Cooking", Text: "Learn to make curries, pol sambol, and hoppers.", Embedding: embeddingAt(0)},
	{Category: "Dancing", Text: "Kandyan dance evolved from temple rituals.", Embedding: embeddingAt(1)},
	{Category: "Cooking", Text: "Market visits to buy fresh spices.", Embedding: embeddingAt(2)},
}

// exerciseStorage runs the behaviour every driver must share against a fresh store
func exerciseStorage(t *testing.T, store storage.Storage) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for _, d := range testDocs {
		stored, err := store.Insert(ctx, d)
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if stored.ID == "" {
			t.Error("expected non-empty ID")
		}
		if stored.Text != d.Text || stored.Category != d.Category {
			t.Errorf("unexpected stored document %+v", stored)
		}
	}

	n, err := store.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 documents, got %d", n)
	}

	n, err = store.Count(ctx, "Cooking")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 cooking documents, got %d", n)
	}

	docs, err := store.List(ctx, storage.ListOpts{Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	for i, d := range docs {
		if d.Text != testDocs[i].Text {
			t.Errorf("List[%d]: expected insertion order, got %q", i, d.Text)
		}
		if d.Embedding != nil {
			t.Errorf("List[%d]: expected no embedding", i)
		}
	}

	docs, err = store.List(ctx, storage.ListOpts{Limit: 1, Offset: 1, Category: "Cooking"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Text != testDocs[2].Text {
		t.Errorf("unexpected paged list %+v", docs)
	}

	var scanned []types.Document
	err = store.Scan(ctx, func(d types.Document) error {
		scanned = append(scanned, d)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(scanned) != 3 {
		t.Fatalf("expected 3 scanned documents, got %d", len(scanned))
	}
	for i, d := range scanned {
		if len(d.Embedding) != testDims {
			t.Errorf("Scan[%d]: expected %d dimensions, got %d", i, testDims, len(d.Embedding))
		}
		if d.Embedding[i] != 1 {
			t.Errorf("Scan[%d]: vector order not preserved", i)
		}
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 3 {
		t.Errorf("expected 3 cleared, got %d", cleared)
	}

	n, err = store.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty store after Clear, got %d", n)
	}
}
