// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/surgecast/surgecast/internal/domain/model"
)

// Default and maximum page sizes for history queries.
const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// HistoryDependencies defines the interface for history queries.
type HistoryDependencies interface {
	History(ctx context.Context, cityID string, limit int) []model.HistoryRecord
}

// HistoryHandler handles history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// historyResponse mirrors the OpenAPI schema for GET /history.
type historyResponse struct {
	CityID  string                `json:"city_id,omitempty"`
	Count   int                   `json:"count"`
	Records []model.HistoryRecord `json:"records"`
}

// HandleGetHistory handles GET /history?city=ID&limit=N requests. Records
// return newest-first.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		if n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded",
				fmt.Errorf("%w: limit above %d", ErrBadRequest, maxHistoryLimit))
			return
		}
		limit = n
	}

	cityID := r.URL.Query().Get("city")
	records := h.deps.History(r.Context(), cityID, limit)

	writeJSON(w, http.StatusOK, historyResponse{
		CityID:  cityID,
		Count:   len(records),
		Records: records,
	})
}
