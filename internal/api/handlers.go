// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ceylonmate/culture-kb/internal/service"
	"github.com/ceylonmate/culture-kb/internal/storage"
)

// Handlers holds HTTP handler dependencies
type Handlers struct {
	svc         *service.Service
	healthCheck func() error
	logger      *slog.Logger
}

// NewHandlers creates new API handlers
func NewHandlers(svc *service.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, logger: logger.With("component", "api")}
}

// SetHealthCheck installs a check run by Health. Without one Health always reports ok.
func (h *Handlers) SetHealthCheck(fn func() error) {
	h.healthCheck = fn
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, ErrorResponse{Error: msg})
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.healthCheck != nil {
		if err := h.healthCheck(); err != nil {
			h.logger.Warn("health check failed", "err", err)
			h.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
	}
	h.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Search handles POST /v1/knowledge/search
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.svc.Search(r.Context(), req.Query, req.Limit, req.Category)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("search failed", "err", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []storage.SearchResult{}
	}

	h.respondJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Ask handles POST /v1/knowledge/ask
func (h *Handlers) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ans, err := h.svc.Ask(r.Context(), req.Question, req.Limit, req.Category)
	switch {
	case errors.Is(err, service.ErrEmptyQuery):
		h.respondError(w, http.StatusBadRequest, "question is required")
		return
	case errors.Is(err, service.ErrAskDisabled):
		h.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		h.logger.Error("ask failed", "err", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, ans)
}

// List handles GET /v1/knowledge
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := service.DefaultListLimit
	if l := q.Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, service.MaxLimit)
	}

	offset := 0
	if o := q.Get("offset"); o != "" {
		parsed, err := strconv.Atoi(o)
		if err != nil || parsed < 0 {
			h.respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = parsed
	}

	category := q.Get("category")
	ctx := r.Context()

	docs, err := h.svc.List(ctx, limit, offset, category)
	if err != nil {
		h.logger.Error("list failed", "err", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []storage.Document{}
	}

	total, err := h.svc.Count(ctx, category)
	if err != nil {
		h.logger.Error("count failed", "err", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, ListResponse{
		Documents: docs,
		Pagination: PaginationInfo{
			Limit:  limit,
			Offset: offset,
			Total:  total,
		},
	})
}
