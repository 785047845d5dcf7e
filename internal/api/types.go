// internal/api/types.go
package api

import "github.com/ceylonmate/culture-kb/internal/apitypes"

// Re-export types from internal/apitypes so handler code and tests can use
// the api package alone.
type (
	SearchRequest  = apitypes.SearchRequest
	SearchResponse = apitypes.SearchResponse
	AskRequest     = apitypes.AskRequest
	AskResponse    = apitypes.AskResponse
	ListResponse   = apitypes.ListResponse
	PaginationInfo = apitypes.PaginationInfo
	ErrorResponse  = apitypes.ErrorResponse
	HealthResponse = apitypes.HealthResponse
)
