package ingest

import (
	"context"
	"fmt"

	"github.com/ceylonmate/culture-kb/internal/storage"
	"github.com/ceylonmate/culture-kb/internal/types"
	"github.com/ceylonmate/culture-kb/internal/vector"
)

// Violation is one stored document that breaks a collection invariant
type Violation struct {
	DocumentID string `json:"document_id,omitempty"`
	Category   string `json:"category,omitempty"`
	Problem    string `json:"problem"`
}

// Report is the outcome of Verify
type Report struct {
	Documents  int         `json:"documents"`
	Catalog    int         `json:"catalog"`
	Violations []Violation `json:"violations"`
}

// OK reports whether the collection satisfies every invariant
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Verify checks the stored collection against the catalog it was built from:
// every vector has dims components, every (category, text) pair matches
// exactly one catalog record, no pair is stored twice, and there are no more
// documents than records.
func Verify(ctx context.Context, store storage.Storage, records []types.KnowledgeRecord, dims int) (*Report, error) {
	catalogCount := make(map[string]int, len(records))
	for _, r := range records {
		catalogCount[r.Key()]++
	}

	report := &Report{Catalog: len(records), Violations: []Violation{}}
	seen := make(map[string]bool)

	err := store.Scan(ctx, func(d types.Document) error {
		report.Documents++

		if err := vector.Validate(d.Embedding, dims); err != nil {
			report.Violations = append(report.Violations, Violation{
				DocumentID: d.ID,
				Category:   d.Category,
				Problem:    err.Error(),
			})
		}

		key := d.Record().Key()
		switch n := catalogCount[key]; {
		case n == 0:
			report.Violations = append(report.Violations, Violation{
				DocumentID: d.ID,
				Category:   d.Category,
				Problem:    "document does not match any catalog record",
			})
		case n > 1:
			report.Violations = append(report.Violations, Violation{
				DocumentID: d.ID,
				Category:   d.Category,
				Problem:    fmt.Sprintf("document matches %d catalog records", n),
			})
		}

		if seen[key] {
			report.Violations = append(report.Violations, Violation{
				DocumentID: d.ID,
				Category:   d.Category,
				Problem:    "duplicate document",
			})
		}
		seen[key] = true

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}

	if report.Documents > len(records) {
		report.Violations = append(report.Violations, Violation{
			Problem: fmt.Sprintf("collection holds %d documents for %d catalog records", report.Documents, len(records)),
		})
	}

	return report, nil
}
