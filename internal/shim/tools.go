// internal/shim/tools.go
package shim

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ceylonmate/culture-kb/internal/apitypes"
	"github.com/ceylonmate/culture-kb/internal/mcptypes"
	"github.com/ceylonmate/culture-kb/internal/types"
)

// APIClient is the subset of client.Client the shim needs
type APIClient interface {
	Search(ctx context.Context, query string, limit int, category string) ([]types.SearchResult, error)
	Ask(ctx context.Context, question string, limit int, category string) (*types.Answer, error)
	List(ctx context.Context, limit, offset int, category string) (*apitypes.ListResponse, error)
}

// Handler holds shim dependencies
type Handler struct {
	client APIClient
}

// NewHandler creates a new shim handler
func NewHandler(c APIClient) *Handler {
	return &Handler{client: c}
}

// Register adds the knowledge base tools to the MCP server, proxied to the API
func Register(server *mcp.Server, h *Handler) {
	mcp.AddTool(server, mcptypes.SearchTool, h.Search)
	mcp.AddTool(server, mcptypes.AskTool, h.Ask)
	mcp.AddTool(server, mcptypes.ListTool, h.List)
}

func (h *Handler) Search(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.SearchInput) (*mcp.CallToolResult, mcptypes.SearchOutput, error) {
	query, ok := mcptypes.NormalizeQuery(input.Query)
	if !ok {
		return mcptypes.ErrorResult("query is required"), mcptypes.SearchOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = mcptypes.DefaultSearchLimit
	}

	results, err := h.client.Search(ctx, query, limit, input.Category)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to search: %v", err)), mcptypes.SearchOutput{}, nil
	}

	if len(results) == 0 {
		return mcptypes.TextResult("No matching passages found."), mcptypes.SearchOutput{Results: []types.SearchResult{}}, nil
	}

	return mcptypes.JSONResult(results), mcptypes.SearchOutput{Results: results}, nil
}

func (h *Handler) Ask(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.AskInput) (*mcp.CallToolResult, mcptypes.AskOutput, error) {
	question, ok := mcptypes.NormalizeQuery(input.Question)
	if !ok {
		return mcptypes.ErrorResult("question is required"), mcptypes.AskOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = mcptypes.DefaultAskLimit
	}

	ans, err := h.client.Ask(ctx, question, limit, input.Category)
	if errors.Is(err, types.ErrNotFound) {
		return mcptypes.ErrorResult("kb_ask is not available: the knowledge API has no ask endpoint"), mcptypes.AskOutput{}, nil
	}
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to answer: %v", err)), mcptypes.AskOutput{}, nil
	}

	return mcptypes.TextResult(ans.Answer), *ans, nil
}

func (h *Handler) List(ctx context.Context, req *mcp.CallToolRequest, input mcptypes.ListInput) (*mcp.CallToolResult, mcptypes.ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = mcptypes.DefaultListLimit
	}

	resp, err := h.client.List(ctx, limit, input.Offset, input.Category)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to list: %v", err)), mcptypes.ListOutput{}, nil
	}

	if len(resp.Documents) == 0 {
		return mcptypes.TextResult("No passages found."), mcptypes.ListOutput{Documents: []types.Document{}}, nil
	}

	return mcptypes.JSONResult(resp.Documents), mcptypes.ListOutput{Documents: resp.Documents}, nil
}
