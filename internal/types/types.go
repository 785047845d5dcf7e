// internal/types/types.go
// Package types contains shared data types that have no CGO dependencies.
// This allows packages like the shim to use Document without pulling in sqlite-vec.
package types

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the knowledge API has no such resource
var ErrNotFound = errors.New("not found")

// KnowledgeRecord is one catalog entry waiting to be embedded
type KnowledgeRecord struct {
	Category string `json:"category" yaml:"category" toml:"category"`
	Text     string `json:"text" yaml:"text" toml:"text"`
}

// Key identifies a record by its (category, text) pair
func (r KnowledgeRecord) Key() string {
	return r.Category + "\x00" + r.Text
}

// Validate returns an error if the record cannot be ingested
func (r KnowledgeRecord) Validate() error {
	if r.Category == "" {
		return fmt.Errorf("category is required")
	}
	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	return nil
}

// Document is a stored knowledge entry.
// Embedding is only populated by Storage.Scan; readers never see vectors.
type Document struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
}

// Record returns the catalog record this document was built from
func (d Document) Record() KnowledgeRecord {
	return KnowledgeRecord{Category: d.Category, Text: d.Text}
}

// SearchResult is a document returned by vector search with its similarity score
type SearchResult struct {
	Document
	Score float64 `json:"score"`
}

// SearchOpts configures search behavior
type SearchOpts struct {
	Limit    int
	Category string
}

// ListOpts configures list behavior
type ListOpts struct {
	Limit    int
	Offset   int
	Category string
}

// Answer is a guide-style reply grounded on the passages in Sources
type Answer struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Sources  []SearchResult `json:"sources"`
}
