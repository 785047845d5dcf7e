// internal/embedder/embedder.go
package embedder

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnexpectedResponse is returned when the service answers with something other than a numeric vector
var ErrUnexpectedResponse = errors.New("unexpected embedding response")

// Embedder generates vector embeddings for text
type Embedder interface {
	// EmbedForStorage creates an embedding optimized for document storage
	EmbedForStorage(ctx context.Context, text string) ([]float32, error)
	// EmbedForSearch creates an embedding optimized for search queries
	EmbedForSearch(ctx context.Context, query string) ([]float32, error)
}

const (
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"
	ProviderOpenAI      = "openai"
)

// Config selects and configures an embedding provider
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	// Token is the provider credential. It is not checked here: a missing
	// token surfaces as a failure on each call.
	Token string
}

// New creates an Embedder based on config
func New(cfg Config) (Embedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	switch cfg.Provider {
	case "", ProviderHuggingFace:
		return NewHuggingFace(cfg.BaseURL, cfg.Model, cfg.Token), nil

	case ProviderOllama:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("ollama URL is required")
		}
		return NewOllama(cfg.BaseURL, cfg.Model), nil

	case ProviderOpenAI:
		return NewOpenAI(cfg.BaseURL, cfg.Model, cfg.Token)

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}
