//go:build !cgo

package storage

import (
	"context"
	"fmt"
)

// SQLite is a stub for non-CGO builds
type SQLite struct{}

var errNoCGO = fmt.Errorf("SQLite storage requires CGO (build with CGO_ENABLED=1)")

// NewSQLite returns an error in non-CGO builds
func NewSQLite(path, table string, dimensions int) (*SQLite, error) {
	return nil, errNoCGO
}

func (s *SQLite) Clear(ctx context.Context) (int64, error) {
	return 0, errNoCGO
}

func (s *SQLite) Insert(ctx context.Context, doc Document) (*Document, error) {
	return nil, errNoCGO
}

func (s *SQLite) Search(ctx context.Context, embedding []float32, opts SearchOpts) ([]SearchResult, error) {
	return nil, errNoCGO
}

func (s *SQLite) List(ctx context.Context, opts ListOpts) ([]Document, error) {
	return nil, errNoCGO
}

func (s *SQLite) Count(ctx context.Context, category string) (int64, error) {
	return 0, errNoCGO
}

func (s *SQLite) Scan(ctx context.Context, fn func(Document) error) error {
	return errNoCGO
}

func (s *SQLite) Close() error {
	return nil
}
