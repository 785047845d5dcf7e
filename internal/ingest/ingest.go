// Package ingest populates the knowledge store from the catalog.
//
// A run is a linear batch job: clear the collection, then for each record in
// catalog order request an embedding and insert one document. Records whose
// embedding fails are logged and skipped; store failures abort the run.
// Nothing is retried and exactly one network call is in flight at a time.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ceylonmate/culture-kb/internal/embedder"
	"github.com/ceylonmate/culture-kb/internal/storage"
	"github.com/ceylonmate/culture-kb/internal/types"
	"github.com/ceylonmate/culture-kb/internal/vector"
)

// Options configures a Pipeline
type Options struct {
	// Dimensions is the model's output length; vectors of any other length are rejected
	Dimensions int
	// Limiter paces embedding requests. Nil means no pacing.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Pipeline embeds catalog records and replaces the store contents with them
type Pipeline struct {
	store    storage.Storage
	embedder embedder.Embedder
	dims     int
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Failure records why one catalog record was skipped
type Failure struct {
	Index    int    `json:"index"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
	Err      error  `json:"-"`
}

// Result summarises one run
type Result struct {
	RunID     string        `json:"run_id"`
	Cleared   int64         `json:"cleared"`
	Attempted int           `json:"attempted"`
	Stored    int           `json:"stored"`
	Failures  []Failure     `json:"failures"`
	Duration  time.Duration `json:"duration"`
}

// Failed returns the number of skipped records
func (r *Result) Failed() int {
	return len(r.Failures)
}

// New creates a Pipeline
func New(store storage.Storage, emb embedder.Embedder, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:    store,
		embedder: emb,
		dims:     opts.Dimensions,
		limiter:  opts.Limiter,
		logger:   logger.With("component", "ingest"),
	}
}

// Run clears the store and ingests records in order.
// The returned error is fatal (clear, insert or cancellation); the Result
// is always non-nil and reflects progress up to that point.
func (p *Pipeline) Run(ctx context.Context, records []types.KnowledgeRecord) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Failures: []Failure{}}
	logger := p.logger.With("run_id", res.RunID)

	defer func() { res.Duration = time.Since(start) }()

	cleared, err := p.store.Clear(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to clear collection: %w", err)
	}
	res.Cleared = cleared
	logger.Info("cleared old records", "count", cleared)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("ingestion interrupted at record %d: %w", i, err)
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return res, fmt.Errorf("ingestion interrupted at record %d: %w", i, err)
			}
		}

		res.Attempted++

		embedding, err := p.embed(ctx, rec)
		if err != nil {
			if ctx.Err() != nil {
				return res, fmt.Errorf("ingestion interrupted at record %d: %w", i, ctx.Err())
			}
			res.Failures = append(res.Failures, Failure{
				Index:    i,
				Category: rec.Category,
				Reason:   err.Error(),
				Err:      err,
			})
			logger.Warn("failed to process record", "index", i, "category", rec.Category, "err", err)
			continue
		}

		doc, err := p.store.Insert(ctx, types.Document{
			Category:  rec.Category,
			Text:      rec.Text,
			Embedding: embedding,
		})
		if err != nil {
			return res, fmt.Errorf("failed to store record %d: %w", i, err)
		}
		res.Stored++
		logger.Info("saved record", "index", i, "category", rec.Category, "id", doc.ID)
	}

	logger.Info("ingestion complete",
		"attempted", res.Attempted,
		"stored", res.Stored,
		"failed", res.Failed(),
		"duration", time.Since(start),
	)
	return res, nil
}

func (p *Pipeline) embed(ctx context.Context, rec types.KnowledgeRecord) ([]float32, error) {
	embedding, err := p.embedder.EmbedForStorage(ctx, rec.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if err := vector.Validate(embedding, p.dims); err != nil {
		return nil, err
	}
	return embedding, nil
}
