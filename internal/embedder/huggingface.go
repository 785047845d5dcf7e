package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHuggingFaceURL is the Inference Providers router for hf-inference models
const DefaultHuggingFaceURL = "https://router.huggingface.co/hf-inference"

// HuggingFace implements Embedder using the Inference API feature-extraction pipeline
type HuggingFace struct {
	baseURL string
	model   string
	token   string
	http    *http.Client
}

type featureExtractionRequest struct {
	Inputs  string                   `json:"inputs"`
	Options featureExtractionOptions `json:"options"`
}

type featureExtractionOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// NewHuggingFace creates a new Hugging Face embedder
func NewHuggingFace(baseURL, model, token string) *HuggingFace {
	if baseURL == "" {
		baseURL = DefaultHuggingFaceURL
	}
	return &HuggingFace{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		token:   token,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (h *HuggingFace) embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := featureExtractionRequest{
		Inputs:  text,
		Options: featureExtractionOptions{WaitForModel: true},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/pipeline/feature-extraction", h.baseURL, h.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Hugging Face: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hugging face returned status %d: %s", resp.StatusCode, string(body))
	}

	return decodeFeatures(body)
}

// decodeFeatures accepts a flat vector or a single-row matrix.
// Anything else (error objects, token-level matrices) is rejected.
func decodeFeatures(body []byte) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(body, &flat); err == nil {
		return flat, nil
	}

	var nested [][]float32
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 1 {
			return nested[0], nil
		}
		return nil, fmt.Errorf("%w: got %d rows, want 1", ErrUnexpectedResponse, len(nested))
	}

	return nil, fmt.Errorf("%w: %s", ErrUnexpectedResponse, truncate(string(body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// EmbedForStorage embeds a catalog passage.
// Sentence-transformers models use no task prefix.
func (h *HuggingFace) EmbedForStorage(ctx context.Context, text string) ([]float32, error) {
	return h.embed(ctx, text)
}

func (h *HuggingFace) EmbedForSearch(ctx context.Context, query string) ([]float32, error) {
	return h.embed(ctx, query)
}
