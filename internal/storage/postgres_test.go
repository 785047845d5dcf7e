package storage_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ceylonmate/culture-kb/internal/storage"
)

const pgTestTable = "cultural_knowledge_test"

// cleanupPostgres drops test tables so each test starts from a fresh schema
func cleanupPostgres(t *testing.T, dsn string) {
	t.Helper()
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect for cleanup: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, "DROP TABLE IF EXISTS "+pgTestTable+"_embeddings, "+pgTestTable)
	if err != nil {
		t.Fatalf("failed to cleanup tables: %v", err)
	}
}

func newTestPostgres(t *testing.T) *storage.Postgres {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set, skipping Postgres tests")
	}
	cleanupPostgres(t, dsn)

	store, err := storage.NewPostgres(context.Background(), dsn, pgTestTable, testDims)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresStorage(t *testing.T) {
	exerciseStorage(t, newTestPostgres(t))
}

func TestPostgresStorage_Search(t *testing.T) {
	store := newTestPostgres(t)
	ctx := context.Background()

	for _, d := range testDocs {
		if _, err := store.Insert(ctx, d); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	results, err := store.Search(ctx, embeddingAt(2), storage.SearchOpts{Limit: 5, Category: "Cooking"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Text != testDocs[2].Text {
		t.Errorf("expected closest match %q, got %q", testDocs[2].Text, results[0].Text)
	}
}

func TestPostgresStorage_RejectsWrongDimensions(t *testing.T) {
	store := newTestPostgres(t)

	doc := testDocs[0]
	doc.Embedding = make([]float32, 384)
	if _, err := store.Insert(context.Background(), doc); err == nil {
		t.Error("expected error inserting a 384-dimension vector into vector(768)")
	}
}
