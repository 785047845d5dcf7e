package embedder

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAI implements Embedder for OpenAI-compatible embedding APIs via langchaingo
type OpenAI struct {
	embedder embeddings.Embedder
}

// NewOpenAI creates an OpenAI-compatible embedder.
// An empty token is sent as "none" so local services work and a missing
// key fails on each call rather than at startup.
func NewOpenAI(baseURL, model, token string) (*OpenAI, error) {
	if token == "" {
		token = "none"
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &OpenAI{embedder: emb}, nil
}

func (o *OpenAI) EmbedForStorage(ctx context.Context, text string) ([]float32, error) {
	vectors, err := o.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to call openai: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors, want 1", ErrUnexpectedResponse, len(vectors))
	}
	return vectors[0], nil
}

func (o *OpenAI) EmbedForSearch(ctx context.Context, query string) ([]float32, error) {
	vec, err := o.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to call openai: %w", err)
	}
	return vec, nil
}
