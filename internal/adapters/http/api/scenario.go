// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/surgecast/surgecast/internal/app"
	"github.com/surgecast/surgecast/internal/domain/scenario"
)

// ScenarioDependencies defines the interface for scenario application.
type ScenarioDependencies interface {
	ApplyScenario(ctx context.Context, kind, cityID string) (app.ScenarioResult, error)
}

// ScenariosDependencies defines the interface for catalog discovery.
type ScenariosDependencies interface {
	ScenarioKinds(ctx context.Context) []scenario.Kind
}

// ScenarioHandler handles scenario application requests.
type ScenarioHandler struct {
	deps ScenarioDependencies
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(deps ScenarioDependencies) *ScenarioHandler {
	return &ScenarioHandler{deps: deps}
}

// scenarioRequest mirrors the OpenAPI schema for POST /scenario.
type scenarioRequest struct {
	Kind   string `json:"kind"`
	CityID string `json:"city_id"`
}

func (s scenarioRequest) validate() error {
	switch {
	case strings.TrimSpace(s.Kind) == "":
		return fmt.Errorf("%w: missing kind", ErrBadRequest)
	case strings.TrimSpace(s.CityID) == "":
		return fmt.Errorf("%w: missing city_id", ErrBadRequest)
	}
	return nil
}

// HandlePostScenario handles POST /scenario requests.
func (h *ScenarioHandler) HandlePostScenario(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: invalid JSON body", ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, err := h.deps.ApplyScenario(r.Context(), req.Kind, req.CityID)
	switch {
	case errors.Is(err, scenario.ErrUnknownKind):
		writeError(w, http.StatusBadRequest, "unknown_kind", err)
	case errors.Is(err, scenario.ErrUnknownCity):
		writeError(w, http.StatusBadRequest, "unknown_city", err)
	case errors.Is(err, scenario.ErrNoEffect),
		errors.Is(err, scenario.ErrInvalidValue),
		errors.Is(err, scenario.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, "invalid_scenario", err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	default:
		writeJSON(w, http.StatusAccepted, result)
	}
}

// ScenariosHandler handles catalog discovery requests.
type ScenariosHandler struct {
	deps ScenariosDependencies
}

// NewScenariosHandler creates a new catalog handler.
func NewScenariosHandler(deps ScenariosDependencies) *ScenariosHandler {
	return &ScenariosHandler{deps: deps}
}

// HandleGetScenarios handles GET /scenarios requests.
func (h *ScenariosHandler) HandleGetScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.ScenarioKinds(r.Context()))
}
