// internal/mcptypes/types.go
// Package mcptypes contains shared MCP tool input/output types.
// These are used by both the direct MCP server (tools) and the shim proxy.
package mcptypes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ceylonmate/culture-kb/internal/types"
)

// SearchInput defines the input schema for kb_search
type SearchInput struct {
	Query    string `json:"query" jsonschema:"what to look up, e.g. 'how is kiribath made'"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of passages (default 5)"`
	Category string `json:"category,omitempty" jsonschema:"only return passages in this category, e.g. Festivals"`
}

// SearchOutput defines the output schema for kb_search
type SearchOutput struct {
	Results []types.SearchResult `json:"results"`
}

// AskInput defines the input schema for kb_ask
type AskInput struct {
	Question string `json:"question" jsonschema:"the visitor's question, e.g. 'why do people light oil lamps at New Year'"`
	Limit    int    `json:"limit,omitempty" jsonschema:"number of passages to ground the answer on (default 5)"`
	Category string `json:"category,omitempty" jsonschema:"only use passages in this category"`
}

// AskOutput defines the output schema for kb_ask
type AskOutput = types.Answer

// ListInput defines the input schema for kb_list
type ListInput struct {
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of passages (default 20)"`
	Offset   int    `json:"offset,omitempty" jsonschema:"number of passages to skip"`
	Category string `json:"category,omitempty" jsonschema:"only list passages in this category"`
}

// ListOutput defines the output schema for kb_list
type ListOutput struct {
	Documents []types.Document `json:"documents"`
}

// TextResult creates a successful MCP result with text content
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// ErrorResult creates an error MCP result
func ErrorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// JSONResult renders v as indented JSON text
func JSONResult(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult(fmt.Sprintf("failed to format response: %v", err))
	}
	return TextResult(string(b))
}

// NormalizeQuery trims the query and reports whether anything is left
func NormalizeQuery(q string) (string, bool) {
	q = strings.TrimSpace(q)
	return q, q != ""
}

const (
	DefaultSearchLimit = 5
	DefaultAskLimit    = 5
	DefaultListLimit   = 20
)

// Tool definitions (shared between server and shim)
var (
	SearchTool = &mcp.Tool{
		Name:        "kb_search",
		Description: "Search Sri Lankan cultural knowledge passages by semantic similarity",
	}

	AskTool = &mcp.Tool{
		Name:        "kb_ask",
		Description: "Answer a question about Sri Lankan culture as a local guide, using only stored passages",
	}

	ListTool = &mcp.Tool{
		Name:        "kb_list",
		Description: "List stored cultural knowledge passages in catalog order",
	}
)
