// internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ceylonmate/culture-kb/internal/apitypes"
	"github.com/ceylonmate/culture-kb/internal/types"
)

// Client is an HTTP client for the knowledge API
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new API client
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	return c.http.Do(req)
}

func decodeError(resp *http.Response) error {
	msg := fmt.Sprintf("status %d", resp.StatusCode)
	var errResp apitypes.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("API error: %w: %s", types.ErrNotFound, msg)
	}
	return fmt.Errorf("API error: %s", msg)
}

// Search finds passages by query
func (c *Client) Search(ctx context.Context, query string, limit int, category string) ([]types.SearchResult, error) {
	req := apitypes.SearchRequest{
		Query:    query,
		Limit:    limit,
		Category: category,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/knowledge/search", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var result apitypes.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return result.Results, nil
}

// Ask requests an answer grounded on the closest passages
func (c *Client) Ask(ctx context.Context, question string, limit int, category string) (*types.Answer, error) {
	req := apitypes.AskRequest{
		Question: question,
		Limit:    limit,
		Category: category,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/knowledge/ask", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var result apitypes.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// List returns one page of stored passages
func (c *Client) List(ctx context.Context, limit, offset int, category string) (*apitypes.ListResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if category != "" {
		q.Set("category", category)
	}
	path := "/v1/knowledge"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var result apitypes.ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Health checks that the API and its store are reachable
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result apitypes.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode health response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || result.Status != "ok" {
		return fmt.Errorf("API unhealthy: %s %s", result.Status, result.Error)
	}
	return nil
}
