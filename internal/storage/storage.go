package storage

import (
	"context"

	"github.com/ceylonmate/culture-kb/internal/types"
)

// Re-exported so callers of storage need not import types.
type (
	Document     = types.Document
	SearchResult = types.SearchResult
	SearchOpts   = types.SearchOpts
	ListOpts     = types.ListOpts
)

// Storage defines the interface for knowledge document persistence.
// Clear and Insert are independent operations; no transaction spans them.
type Storage interface {
	// Clear deletes every document and returns how many were removed
	Clear(ctx context.Context) (int64, error)
	// Insert persists one document and returns it with its store-assigned ID
	Insert(ctx context.Context, doc Document) (*Document, error)
	Search(ctx context.Context, embedding []float32, opts SearchOpts) ([]SearchResult, error)
	List(ctx context.Context, opts ListOpts) ([]Document, error)
	Count(ctx context.Context, category string) (int64, error)
	// Scan calls fn for every document, embedding included, in insertion order
	Scan(ctx context.Context, fn func(Document) error) error
	Close() error
}
