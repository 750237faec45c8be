package feedwatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/surgecast/surgecast/internal/domain/model"
	"github.com/surgecast/surgecast/pkg/logger"
)

// checkServiceHealth verifies the service answers its liveness probe.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := &http.Client{Timeout: config.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// dialLiveFeed opens the websocket snapshot stream.
func dialLiveFeed(ctx context.Context, config *Config) (*websocket.Conn, error) {
	wsURL := strings.Replace(config.BaseURL, "http", "ws", 1) + "/live"

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	return conn, nil
}

// applyScenario fires a scenario request and reports the service's answer.
func applyScenario(ctx context.Context, config *Config) (scenarioResponse, error) {
	body, err := json.Marshal(map[string]string{
		"kind":    config.ScenarioKind,
		"city_id": config.ScenarioCity,
	})
	if err != nil {
		return scenarioResponse{}, fmt.Errorf("marshal scenario request: %w", err)
	}

	client := &http.Client{Timeout: config.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		config.BaseURL+"/scenario", bytes.NewReader(body))
	if err != nil {
		return scenarioResponse{}, fmt.Errorf("build scenario request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return scenarioResponse{}, fmt.Errorf("apply scenario: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		raw, _ := io.ReadAll(resp.Body)
		return scenarioResponse{}, fmt.Errorf("scenario rejected with status %d: %s", resp.StatusCode, raw)
	}

	var out scenarioResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return scenarioResponse{}, fmt.Errorf("decode scenario response: %w", err)
	}

	logger.Get().Info(ctx, "scenario applied",
		logger.String("kind", out.Kind),
		logger.String("city_id", out.CityID),
		logger.Any("effects", out.Effects),
	)
	return out, nil
}

// fetchStats retrieves the service's stats summary.
func fetchStats(ctx context.Context, config *Config) (statsResponse, error) {
	var out statsResponse
	if err := getJSON(ctx, config, "/stats", &out); err != nil {
		return statsResponse{}, err
	}
	return out, nil
}

// fetchHistory retrieves up to limit recent records for one city.
func fetchHistory(ctx context.Context, config *Config, cityID string, limit int) ([]model.HistoryRecord, error) {
	var out historyResponse
	path := fmt.Sprintf("/history?city=%s&limit=%d", cityID, limit)
	if err := getJSON(ctx, config, path, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

func getJSON(ctx context.Context, config *Config, path string, v any) error {
	client := &http.Client{Timeout: config.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
