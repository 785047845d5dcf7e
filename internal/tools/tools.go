package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ceylonmate/culture-kb/internal/mcptypes"
	"github.com/ceylonmate/culture-kb/internal/service"
	"github.com/ceylonmate/culture-kb/internal/types"
)

// Handler holds dependencies for tool handlers
type Handler struct {
	svc *service.Service
}

// NewHandler creates a tool handler backed by svc
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register adds the knowledge base tools to the MCP server
func Register(server *mcp.Server, svc *service.Service) {
	h := NewHandler(svc)

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

	results, err := h.svc.Search(ctx, query, limit, input.Category)
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

	ans, err := h.svc.Ask(ctx, question, limit, input.Category)
	if errors.Is(err, service.ErrAskDisabled) {
		return mcptypes.ErrorResult("kb_ask is not available: GROQ_API_KEY is not set"), mcptypes.AskOutput{}, nil
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

	docs, err := h.svc.List(ctx, limit, input.Offset, input.Category)
	if err != nil {
		return mcptypes.ErrorResult(fmt.Sprintf("failed to list: %v", err)), mcptypes.ListOutput{}, nil
	}

	if len(docs) == 0 {
		return mcptypes.TextResult("No passages found."), mcptypes.ListOutput{Documents: []types.Document{}}, nil
	}

	return mcptypes.JSONResult(docs), mcptypes.ListOutput{Documents: docs}, nil
}
