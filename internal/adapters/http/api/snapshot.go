// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/surgecast/surgecast/internal/adapters/repository"
	"github.com/surgecast/surgecast/internal/domain/model"
)

// SnapshotDependencies defines the interface for snapshot queries.
type SnapshotDependencies interface {
	Snapshot(ctx context.Context) (model.Snapshot, error)
	CityState(ctx context.Context, cityID string) (model.CityState, error)
}

// SnapshotHandler handles current-state requests.
type SnapshotHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps SnapshotDependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

// HandleGetSnapshot handles GET /snapshot and GET /snapshot?city=ID.
// Before the first tick completes it returns 503, the transient
// "not yet connected" state.
func (h *SnapshotHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	if cityID := r.URL.Query().Get("city"); cityID != "" {
		state, err := h.deps.CityState(r.Context(), cityID)
		switch {
		case errors.Is(err, repository.ErrNoSnapshot):
			writeError(w, http.StatusServiceUnavailable, "no_snapshot", err)
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "unknown_city", err)
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		default:
			writeJSON(w, http.StatusOK, state)
		}
		return
	}

	snapshot, err := h.deps.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoSnapshot) {
			writeError(w, http.StatusServiceUnavailable, "no_snapshot", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
