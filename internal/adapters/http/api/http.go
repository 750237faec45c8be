// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/surgecast/surgecast/internal/app"
	"github.com/surgecast/surgecast/internal/domain/model"
	"github.com/surgecast/surgecast/internal/domain/scenario"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Snapshot(ctx context.Context) (model.Snapshot, error)
	CityState(ctx context.Context, cityID string) (model.CityState, error)
	History(ctx context.Context, cityID string, limit int) []model.HistoryRecord
	ApplyScenario(ctx context.Context, kind, cityID string) (app.ScenarioResult, error)
	ScenarioKinds(ctx context.Context) []scenario.Kind
	GetStats(ctx context.Context) app.Stats
}

// Server wires HTTP routes for the business API.
type Server struct {
	snapshotHandler  *SnapshotHandler
	historyHandler   *HistoryHandler
	scenarioHandler  *ScenarioHandler
	scenariosHandler *ScenariosHandler
	statsHandler     *StatsHandler
	healthHandler    *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		snapshotHandler:  NewSnapshotHandler(deps),
		historyHandler:   NewHistoryHandler(deps),
		scenarioHandler:  NewScenarioHandler(deps),
		scenariosHandler: NewScenariosHandler(deps),
		statsHandler:     NewStatsHandler(deps),
		healthHandler:    NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/snapshot", MetricsMiddleware(s.snapshotHandler.HandleGetSnapshot, "snapshot"))
	mux.HandleFunc("/history", MetricsMiddleware(s.historyHandler.HandleGetHistory, "history"))
	mux.HandleFunc("/scenario", MetricsMiddleware(s.scenarioHandler.HandlePostScenario, "scenario"))
	mux.HandleFunc("/scenarios", MetricsMiddleware(s.scenariosHandler.HandleGetScenarios, "scenarios"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
