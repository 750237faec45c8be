package feedwatch

import (
	"fmt"
	"os"

	"github.com/surgecast/surgecast/pkg/logger"
)

// SetupLogging initializes the logger for CLI use.
func SetupLogging() error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the feed watch tool.
func ShowHelp() {
	os.Stdout.WriteString(`Surgecast Feed Watch Tool
=========================

Connects to a running surgecast instance, observes the live snapshot feed,
optionally fires a scenario, and verifies the stream's guarantees: strictly
increasing ticks, a state for every city in every snapshot, and visibility
of the applied override.

Usage:
  go run cmd/feedwatch/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -snapshots int
        Number of snapshots to observe (default 6)
  -scenario string
        Scenario kind to fire mid-run: demand_surge, fuel_spike,
        congestion_jam, crisis ("" disables)
  -city string
        City the scenario targets (default "chicago")
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Log every received snapshot
  -help
        Show help
`)
}
