package shim_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ceylonmate/culture-kb/internal/apitypes"
	"github.com/ceylonmate/culture-kb/internal/client"
	"github.com/ceylonmate/culture-kb/internal/mcptypes"
	"github.com/ceylonmate/culture-kb/internal/shim"
	"github.com/ceylonmate/culture-kb/internal/types"
)

var _ shim.APIClient = (*client.Client)(nil)

// mockAPIClient implements shim.APIClient for testing
type mockAPIClient struct {
	docs      []types.Document
	searchErr error
	askErr    error
	listErr   error
	lastQuery string
	lastLimit int
}

func (m *mockAPIClient) Ask(ctx context.Context, question string, limit int, category string) (*types.Answer, error) {
	m.lastQuery = question
	m.lastLimit = limit
	if m.askErr != nil {
		return nil, m.askErr
	}
	sources, _ := m.Search(ctx, question, limit, category)
	return &types.Answer{Question: question, Answer: "Ayubowan! " + question, Sources: sources}, nil
}

func (m *mockAPIClient) Search(ctx context.Context, query string, limit int, category string) ([]types.SearchResult, error) {
	m.lastQuery = query
	m.lastLimit = limit
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var results []types.SearchResult
	for _, d := range m.docs {
		if category != "" && d.Category != category {
			continue
		}
		results = append(results, types.SearchResult{Document: d, Score: 0.5})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (m *mockAPIClient) List(ctx context.Context, limit, offset int, category string) (*apitypes.ListResponse, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var docs []types.Document
	for _, d := range m.docs {
		if category != "" && d.Category != category {
			continue
		}
		docs = append(docs, d)
	}
	if offset > len(docs) {
		offset = len(docs)
	}
	docs = docs[offset:]
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return &apitypes.ListResponse{Documents: docs}, nil
}

func seeded() *mockAPIClient {
	return &mockAPIClient{docs: []types.Document{
		{ID: "a", Category: "Arts & Crafts", Text: "Ambalangoda masks"},
		{ID: "b", Category: "Tea", Text: "Plucking two leaves and a bud"},
	}}
}

func TestShimHandler_Search_Success(t *testing.T) {
	c := seeded()
	handler := shim.NewHandler(c)

	result, output, err := handler.Search(context.Background(), nil, mcptypes.SearchInput{Query: " tea "})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Search returned error result: %v", result.Content)
	}
	if len(output.Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(output.Results))
	}
	if c.lastQuery != "tea" {
		t.Errorf("expected trimmed query, got %q", c.lastQuery)
	}
	if c.lastLimit != mcptypes.DefaultSearchLimit {
		t.Errorf("expected default limit, got %d", c.lastLimit)
	}
}

func TestShimHandler_Search_MissingQuery(t *testing.T) {
	handler := shim.NewHandler(seeded())

	result, _, err := handler.Search(context.Background(), nil, mcptypes.SearchInput{})
	if err != nil {
		t.Fatalf("expected tool error, got %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for missing query")
	}
}

func TestShimHandler_Search_APIError(t *testing.T) {
	c := seeded()
	c.searchErr = errors.New("API error: rate limit exceeded")
	handler := shim.NewHandler(c)

	result, _, err := handler.Search(context.Background(), nil, mcptypes.SearchInput{Query: "masks"})
	if err != nil {
		t.Fatalf("expected tool error, got %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	text := result.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, "rate limit") {
		t.Errorf("expected API message in result, got %q", text)
	}
}

func TestShimHandler_List(t *testing.T) {
	handler := shim.NewHandler(seeded())

	_, output, err := handler.List(context.Background(), nil, mcptypes.ListInput{Category: "Tea"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(output.Documents) != 1 || output.Documents[0].ID != "b" {
		t.Errorf("unexpected documents: %+v", output.Documents)
	}
}

func TestShimHandler_List_Empty(t *testing.T) {
	handler := shim.NewHandler(&mockAPIClient{})

	result, output, _ := handler.List(context.Background(), nil, mcptypes.ListInput{})
	if result.IsError {
		t.Error("empty list is not an error")
	}
	if output.Documents == nil {
		t.Error("expected non-nil empty slice")
	}
}

func TestShimHandler_List_APIError(t *testing.T) {
	c := seeded()
	c.listErr = errors.New("connection refused")
	handler := shim.NewHandler(c)

	result, _, _ := handler.List(context.Background(), nil, mcptypes.ListInput{})
	if !result.IsError {
		t.Error("expected error result")
	}
}

func TestShimHandler_Ask(t *testing.T) {
	c := seeded()
	handler := shim.NewHandler(c)

	result, output, err := handler.Ask(context.Background(), nil, mcptypes.AskInput{Question: " how is tea plucked? ", Category: "Tea"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if c.lastQuery != "how is tea plucked?" || c.lastLimit != mcptypes.DefaultAskLimit {
		t.Errorf("expected trimmed question and default limit, got %q %d", c.lastQuery, c.lastLimit)
	}
	if output.Answer != "Ayubowan! how is tea plucked?" || len(output.Sources) != 1 {
		t.Errorf("unexpected output: %+v", output)
	}
	text := result.Content[0].(*mcp.TextContent).Text
	if text != output.Answer {
		t.Errorf("expected answer as text content, got %q", text)
	}
}

func TestShimHandler_Ask_MissingQuestion(t *testing.T) {
	result, _, err := shim.NewHandler(seeded()).Ask(context.Background(), nil, mcptypes.AskInput{Question: "  "})
	if err != nil {
		t.Fatalf("expected tool error, not protocol error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError for a blank question")
	}
}

func TestShimHandler_Ask_EndpointMissing(t *testing.T) {
	c := seeded()
	c.askErr = fmt.Errorf("API error: %w: status 404", types.ErrNotFound)

	result, _, err := shim.NewHandler(c).Ask(context.Background(), nil, mcptypes.AskInput{Question: "tea?"})
	if err != nil {
		t.Fatalf("expected tool error, not protocol error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError")
	}
	if text := result.Content[0].(*mcp.TextContent).Text; !strings.Contains(text, "no ask endpoint") {
		t.Errorf("expected missing endpoint message, got %q", text)
	}
}

func TestShimHandler_Ask_APIError(t *testing.T) {
	c := seeded()
	c.askErr = errors.New("API error: answer generation is not configured")

	result, _, _ := shim.NewHandler(c).Ask(context.Background(), nil, mcptypes.AskInput{Question: "tea?"})
	if !result.IsError {
		t.Error("expected IsError when the API fails")
	}
}
