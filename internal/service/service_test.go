package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ceylonmate/culture-kb/internal/service"
	"github.com/ceylonmate/culture-kb/internal/types"
)

// mockEmbedder implements embedder.Embedder for testing
type mockEmbedder struct {
	queries []string
	err     error
	// failFirst limits err to the first n calls when set
	failFirst int
}

func (m *mockEmbedder) EmbedForStorage(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, 768), nil
}

func (m *mockEmbedder) EmbedForSearch(ctx context.Context, query string) ([]float32, error) {
	m.queries = append(m.queries, query)
	if m.err != nil && (m.failFirst == 0 || len(m.queries) <= m.failFirst) {
		return nil, m.err
	}
	return make([]float32, 768), nil
}

// mockStorage implements storage.Storage for testing
type mockStorage struct {
	docs       []types.Document
	lastSearch types.SearchOpts
	lastList   types.ListOpts
	closed     bool
}

func (m *mockStorage) Clear(ctx context.Context) (int64, error) {
	n := int64(len(m.docs))
	m.docs = nil
	return n, nil
}

func (m *mockStorage) Insert(ctx context.Context, doc types.Document) (*types.Document, error) {
	m.docs = append(m.docs, doc)
	return &doc, nil
}

func (m *mockStorage) Search(ctx context.Context, embedding []float32, opts types.SearchOpts) ([]types.SearchResult, error) {
	m.lastSearch = opts
	var out []types.SearchResult
	for _, d := range m.docs {
		if opts.Category == "" || d.Category == opts.Category {
			out = append(out, types.SearchResult{Document: d, Score: 0.9})
		}
	}
	return out, nil
}

func (m *mockStorage) List(ctx context.Context, opts types.ListOpts) ([]types.Document, error) {
	m.lastList = opts
	return m.docs, nil
}

func (m *mockStorage) Count(ctx context.Context, category string) (int64, error) {
	return int64(len(m.docs)), nil
}

func (m *mockStorage) Scan(ctx context.Context, fn func(types.Document) error) error {
	for _, d := range m.docs {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockStorage) Close() error {
	m.closed = true
	return nil
}

func seeded() *mockStorage {
	return &mockStorage{docs: []types.Document{
		{ID: "1", Category: "Festivals", Text: "Sinhala and Tamil New Year in April"},
		{ID: "2", Category: "Cooking", Text: "Kiribath is milk rice"},
	}}
}

func TestService_Search(t *testing.T) {
	store := seeded()
	emb := &mockEmbedder{}
	svc := service.New(store, emb)

	results, err := svc.Search(context.Background(), "  new year  ", 0, "Festivals")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != "1" {
		t.Errorf("expected document 1, got %q", results[0].ID)
	}
	if store.lastSearch.Limit != service.DefaultSearchLimit {
		t.Errorf("expected default limit %d, got %d", service.DefaultSearchLimit, store.lastSearch.Limit)
	}
	if len(emb.queries) != 1 || emb.queries[0] != "new year" {
		t.Errorf("expected trimmed query to be embedded, got %v", emb.queries)
	}
}

func TestService_Search_EmptyQuery(t *testing.T) {
	emb := &mockEmbedder{}
	svc := service.New(seeded(), emb)

	_, err := svc.Search(context.Background(), "   ", 5, "")
	if !errors.Is(err, service.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if len(emb.queries) != 0 {
		t.Error("embedder should not be called for an empty query")
	}
}

func TestService_Search_EmbedError(t *testing.T) {
	svc := service.New(seeded(), &mockEmbedder{err: errors.New("model loading")})

	_, err := svc.Search(context.Background(), "tea", 5, "")
	if err == nil {
		t.Error("expected error when embedding fails")
	}
}

func TestService_List_ClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		offset    int
		wantLimit int
		wantOff   int
	}{
		{"default", 0, 0, service.DefaultListLimit, 0},
		{"explicit", 7, 3, 7, 3},
		{"too large", 5000, 0, service.MaxLimit, 0},
		{"negative offset", 10, -4, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seeded()
			svc := service.New(store, &mockEmbedder{})

			if _, err := svc.List(context.Background(), tt.limit, tt.offset, ""); err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if store.lastList.Limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", store.lastList.Limit, tt.wantLimit)
			}
			if store.lastList.Offset != tt.wantOff {
				t.Errorf("offset = %d, want %d", store.lastList.Offset, tt.wantOff)
			}
		})
	}
}

func TestService_CountAndClose(t *testing.T) {
	store := seeded()
	svc := service.New(store, &mockEmbedder{})

	n, err := svc.Count(context.Background(), "")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !store.closed {
		t.Error("expected storage to be closed")
	}
}
