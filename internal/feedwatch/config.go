package feedwatch

import (
	"time"

	"github.com/surgecast/surgecast/internal/domain/model"
)

// Config holds configuration for one watch run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Snapshots    int           // Number of snapshots to observe
	ScenarioKind string        // Scenario kind to fire mid-run ("" disables)
	ScenarioCity string        // City the scenario targets
	Timeout      time.Duration // HTTP request timeout
	Verbose      bool          // Enable verbose logging
}

// Stats holds watch run statistics.
type Stats struct {
	SnapshotsObserved int
	CitiesPerSnapshot int
	ScenarioApplied   bool
	OverrideObserved  bool
	FallbacksSeen     int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// scenarioResponse mirrors the POST /scenario response schema.
type scenarioResponse struct {
	Accepted  bool      `json:"accepted"`
	Kind      string    `json:"kind"`
	CityID    string    `json:"city_id"`
	Effects   []string  `json:"effects"`
	ExpiresAt time.Time `json:"expires_at"`
}

// statsResponse mirrors the GET /stats response schema.
type statsResponse struct {
	Tick            uint64   `json:"tick"`
	Cities          []string `json:"cities"`
	Subscribers     int      `json:"subscribers"`
	HistoryLen      int      `json:"history_len"`
	HistoryCapacity int      `json:"history_capacity"`
}

// historyResponse mirrors the GET /history response schema.
type historyResponse struct {
	Count   int                   `json:"count"`
	Records []model.HistoryRecord `json:"records"`
}
