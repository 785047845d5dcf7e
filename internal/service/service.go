// internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ceylonmate/culture-kb/internal/answer"
	"github.com/ceylonmate/culture-kb/internal/embedder"
	"github.com/ceylonmate/culture-kb/internal/storage"
	"github.com/ceylonmate/culture-kb/internal/types"
)

const (
	DefaultSearchLimit = 5
	DefaultAskLimit    = 5
	DefaultListLimit   = 20
	MaxLimit           = 100

	DefaultEmbedAttempts   = 3
	DefaultEmbedRetryDelay = 2 * time.Second
)

var (
	// ErrEmptyQuery is returned when a search or question has no text
	ErrEmptyQuery = errors.New("query is required")
	// ErrAskDisabled is returned by Ask when no answer generator is configured
	ErrAskDisabled = errors.New("answer generation is not configured")
)

// Service contains the read-side logic for the knowledge base
type Service struct {
	storage    storage.Storage
	embedder   embedder.Embedder
	generator  answer.Generator
	attempts   int
	retryDelay time.Duration
}

// Option configures a Service
type Option func(*Service)

// WithGenerator enables Ask
func WithGenerator(g answer.Generator) Option {
	return func(s *Service) {
		s.generator = g
	}
}

// WithEmbedRetry sets how often Ask tries to embed the question
func WithEmbedRetry(attempts int, delay time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.attempts = attempts
		}
		s.retryDelay = delay
	}
}

// New creates a new Service
func New(store storage.Storage, emb embedder.Embedder, opts ...Option) *Service {
	s := &Service{
		storage:    store,
		embedder:   emb,
		attempts:   DefaultEmbedAttempts,
		retryDelay: DefaultEmbedRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search finds knowledge passages by semantic similarity
func (s *Service) Search(ctx context.Context, query string, limit int, category string) ([]storage.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	embedding, err := s.embedder.EmbedForSearch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	opts := storage.SearchOpts{
		Limit:    clampLimit(limit, DefaultSearchLimit),
		Category: category,
	}

	return s.storage.Search(ctx, embedding, opts)
}

// Ask retrieves the passages closest to question and has the generator
// answer from them alone. The passages are returned as Sources.
func (s *Service) Ask(ctx context.Context, question string, limit int, category string) (*types.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuery
	}
	if s.generator == nil {
		return nil, ErrAskDisabled
	}

	embedding, err := s.embedQuestion(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	results, err := s.storage.Search(ctx, embedding, storage.SearchOpts{
		Limit:    clampLimit(limit, DefaultAskLimit),
		Category: category,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	if results == nil {
		results = []storage.SearchResult{}
	}

	passages := lo.Map(results, func(r storage.SearchResult, _ int) string { return r.Text })
	text, err := s.generator.Answer(ctx, question, passages)
	if err != nil {
		return nil, err
	}

	return &types.Answer{Question: question, Answer: text, Sources: results}, nil
}

// embedQuestion retries while the hosted model is cold
func (s *Service) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		embedding, err := s.embedder.EmbedForSearch(ctx, question)
		if err == nil {
			return embedding, nil
		}
		lastErr = err
		if attempt == s.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
	return nil, lastErr
}

// List returns stored passages in insertion order
func (s *Service) List(ctx context.Context, limit, offset int, category string) ([]storage.Document, error) {
	if offset < 0 {
		offset = 0
	}
	opts := storage.ListOpts{
		Limit:    clampLimit(limit, DefaultListLimit),
		Offset:   offset,
		Category: category,
	}

	return s.storage.List(ctx, opts)
}

// Count returns the number of stored passages, optionally for one category
func (s *Service) Count(ctx context.Context, category string) (int64, error) {
	return s.storage.Count(ctx, category)
}

// Close cleans up resources
func (s *Service) Close() error {
	return s.storage.Close()
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
