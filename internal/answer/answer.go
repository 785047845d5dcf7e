// Package answer writes a local-guide reply to a visitor's question using
// only the passages retrieved from the knowledge base.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultTemperature = 0.4
	DefaultMaxTokens   = 400
)

var (
	// ErrMissingToken is returned when no chat API key is configured
	ErrMissingToken = errors.New("GROQ_API_KEY is not set")
	// ErrEmptyAnswer is returned when the model replies with no text
	ErrEmptyAnswer = errors.New("model returned an empty answer")
)

// Generator answers a question from retrieved passages
type Generator interface {
	Answer(ctx context.Context, question string, passages []string) (string, error)
}

// Config configures the chat model
type Config struct {
	BaseURL     string
	Model       string
	Token       string
	Temperature float64
	MaxTokens   int
}

// LLM implements Generator on any OpenAI-compatible chat API
type LLM struct {
	client      llms.Model
	temperature float64
	maxTokens   int
}

// New creates an LLM from cfg, filling unset fields with the defaults
func New(cfg Config) (*LLM, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.Token),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}
	return NewWithModel(client, cfg.Temperature, cfg.MaxTokens), nil
}

// NewWithModel wraps an existing langchaingo model
func NewWithModel(m llms.Model, temperature float64, maxTokens int) *LLM {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &LLM{client: m, temperature: temperature, maxTokens: maxTokens}
}

const systemPrompt = `You are a warm, friendly Sri Lankan local guide talking with a visitor.

Rules:
- Answer only from the context you are given.
- If the context does not cover the question, greet the visitor warmly and say you do not have that detail yet.
- Talk naturally, the way a guide speaks to a friend. No headings, lists or numbering.
- Open with a welcome, then explain the custom in two or three short paragraphs.
- Never say that you are reading from a context and never say that you are an AI.`

// UserPrompt joins the passages into the context block sent with question
func UserPrompt(question string, passages []string) string {
	return "Context: " + strings.Join(passages, "\n\n") + "\n\nQuestion: " + question
}

// Answer asks the model for a reply grounded on passages
func (l *LLM) Answer(ctx context.Context, question string, passages []string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, UserPrompt(question, passages)),
	}

	resp, err := l.client.GenerateContent(ctx, content,
		llms.WithTemperature(l.temperature),
		llms.WithMaxTokens(l.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyAnswer
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}
