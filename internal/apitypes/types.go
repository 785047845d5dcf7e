// Package apitypes holds the JSON request and response bodies shared by the
// HTTP API and its client. It has no CGO dependencies.
package apitypes

import "github.com/ceylonmate/culture-kb/internal/types"

// SearchRequest is the body of POST /v1/knowledge/search
type SearchRequest struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit,omitempty"`
	Category string `json:"category,omitempty"`
}

// SearchResponse is returned by POST /v1/knowledge/search
type SearchResponse struct {
	Results []types.SearchResult `json:"results"`
}

// AskRequest is the body of POST /v1/knowledge/ask
type AskRequest struct {
	Question string `json:"question"`
	Limit    int    `json:"limit,omitempty"`
	Category string `json:"category,omitempty"`
}

// AskResponse is returned by POST /v1/knowledge/ask
type AskResponse = types.Answer

// ListResponse is returned by GET /v1/knowledge
type ListResponse struct {
	Documents  []types.Document `json:"documents"`
	Pagination PaginationInfo   `json:"pagination"`
}

// PaginationInfo describes the page returned by a list call
type PaginationInfo struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// ErrorResponse is returned with every 4xx and 5xx status
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
