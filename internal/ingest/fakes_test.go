package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ceylonmate/culture-kb/internal/storage"
	"github.com/ceylonmate/culture-kb/internal/types"
)

const testDims = 8

// memStore is an in-memory storage.Storage
type memStore struct {
	mu        sync.Mutex
	docs      []types.Document
	nextID    int
	inserts   int
	clearErr  error
	insertErr error
}

func (m *memStore) Clear(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return 0, m.clearErr
	}
	n := int64(len(m.docs))
	m.docs = nil
	return n, nil
}

func (m *memStore) Insert(ctx context.Context, doc types.Document) (*types.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	m.nextID++
	doc.ID = fmt.Sprintf("doc-%d", m.nextID)
	m.docs = append(m.docs, doc)
	return &doc, nil
}

func (m *memStore) Search(ctx context.Context, embedding []float32, opts storage.SearchOpts) ([]storage.SearchResult, error) {
	return nil, errors.New("not implemented")
}

func (m *memStore) List(ctx context.Context, opts storage.ListOpts) ([]storage.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.Document, 0, len(m.docs))
	for _, d := range m.docs {
		d.Embedding = nil
		out = append(out, d)
	}
	return out, nil
}

func (m *memStore) Count(ctx context.Context, category string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, d := range m.docs {
		if category == "" || d.Category == category {
			n++
		}
	}
	return n, nil
}

func (m *memStore) Scan(ctx context.Context, fn func(storage.Document) error) error {
	m.mu.Lock()
	docs := append([]types.Document(nil), m.docs...)
	m.mu.Unlock()
	for _, d := range docs {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.docs))
	for i, d := range m.docs {
		out[i] = d.Text
	}
	return out
}

// fakeEmbedder returns a deterministic vector per text.
// Texts in fail get an error; texts in vectors get that exact vector.
type fakeEmbedder struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]error
	vectors map[string][]float32
	onCall  func(text string)
}

func (f *fakeEmbedder) EmbedForStorage(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(text)
	}
	if err := f.fail[text]; err != nil {
		return nil, err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	v := make([]float32, testDims)
	for i := range v {
		v[i] = float32(len(text)+i) / 100
	}
	return v, nil
}

func (f *fakeEmbedder) EmbedForSearch(ctx context.Context, query string) ([]float32, error) {
	return f.EmbedForStorage(ctx, query)
}

func records(texts ...string) []types.KnowledgeRecord {
	out := make([]types.KnowledgeRecord, len(texts))
	for i, t := range texts {
		out[i] = types.KnowledgeRecord{Category: "History", Text: t}
	}
	return out
}
