// Package models lists the Gemini models available to an API key.
package models

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"google.golang.org/genai"
)

// ErrMissingAPIKey is returned when no Gemini API key is configured
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

const (
	MethodGenerateContent = "generateContent"
	MethodEmbedContent    = "embedContent"
)

// Model is one entry returned by ListModels
type Model struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"display_name"`
	InputTokenLimit  int64    `json:"input_token_limit"`
	OutputTokenLimit int64    `json:"output_token_limit"`
	Methods          []string `json:"methods"`
}

// Option adjusts the underlying client configuration
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at another endpoint
func WithBaseURL(url string) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = url
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *genai.ClientConfig) {
		c.HTTPClient = hc
	}
}

// Lister queries the Gemini API model catalog
type Lister struct {
	client *genai.Client
}

// NewLister creates a Lister authenticated with apiKey
func NewLister(ctx context.Context, apiKey string, opts ...Option) (*Lister, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Lister{client: client}, nil
}

// List returns the base models supporting method, in API order.
// An empty method returns every model.
func (l *Lister) List(ctx context.Context, method string) ([]Model, error) {
	queryBase := true
	cfg := &genai.ListModelsConfig{PageSize: 1000, QueryBase: &queryBase}

	var out []Model
	for {
		page, err := l.client.Models.List(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}

		for _, m := range page.Items {
			if method != "" && !slices.Contains(m.SupportedActions, method) {
				continue
			}
			out = append(out, Model{
				Name:             strings.TrimPrefix(m.Name, "models/"),
				DisplayName:      m.DisplayName,
				InputTokenLimit:  int64(m.InputTokenLimit),
				OutputTokenLimit: int64(m.OutputTokenLimit),
				Methods:          m.SupportedActions,
			})
		}

		if page.NextPageToken == "" {
			return out, nil
		}
		cfg.PageToken = page.NextPageToken
	}
}
