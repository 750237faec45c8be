// Package feedwatch is an end-to-end checker for a running instance: it
// subscribes to the live feed, optionally fires a scenario, and verifies
// the stream's ordering, completeness and override guarantees.
package feedwatch

import (
	"context"
	"fmt"
	"time"

	"github.com/surgecast/surgecast/internal/domain/model"
	"github.com/surgecast/surgecast/pkg/logger"
)

// Run executes one complete watch: health check, live subscription,
// scenario injection at the halfway point, and verification.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	log := logger.Get()
	log.Info(ctx, "starting feed watch",
		logger.String("baseURL", config.BaseURL),
		logger.Int("snapshots", config.Snapshots),
		logger.String("scenario", config.ScenarioKind),
		logger.String("city", config.ScenarioCity),
	)

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	serviceStats, err := fetchStats(ctx, config)
	if err != nil {
		return fmt.Errorf("stats retrieval failed: %w", err)
	}
	log.Info(ctx, "service reachable",
		logger.Any("tick", serviceStats.Tick),
		logger.Any("cities", serviceStats.Cities),
	)

	conn, err := dialLiveFeed(ctx, config)
	if err != nil {
		return fmt.Errorf("live feed connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var (
		observed []model.Snapshot
		applied  scenarioResponse
		fired    bool
	)

	for len(observed) < config.Snapshots {
		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetReadDeadline(deadline)
		}

		var snapshot model.Snapshot
		if err := conn.ReadJSON(&snapshot); err != nil {
			return fmt.Errorf("read snapshot %d: %w", len(observed)+1, err)
		}
		observed = append(observed, snapshot)

		if config.Verbose {
			log.Info(ctx, "snapshot received",
				logger.Any("tick", snapshot.Tick),
				logger.Int("cities", len(snapshot.Cities)),
			)
		}

		// Fire the scenario halfway through so its effect lands inside
		// the observation window.
		if !fired && config.ScenarioKind != "" && len(observed) >= config.Snapshots/2 {
			applied, err = applyScenario(ctx, config)
			if err != nil {
				return fmt.Errorf("scenario application failed: %w", err)
			}
			fired = true
			stats.ScenarioApplied = true
		}
	}

	if err := verifySnapshots(observed, serviceStats.Cities, stats); err != nil {
		return fmt.Errorf("snapshot verification failed: %w", err)
	}

	if fired {
		// Only snapshots after the application can show the effect.
		half := config.Snapshots / 2
		if err := verifyOverride(observed[half:], applied); err != nil {
			return fmt.Errorf("override verification failed: %w", err)
		}
		stats.OverrideObserved = true
	}

	if err := verifyHistoryAgainstFeed(ctx, config, observed); err != nil {
		return fmt.Errorf("history verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	return nil
}

// verifyHistoryAgainstFeed cross-checks the history endpoint against the
// last observed snapshot: the newest retained record for a city must not
// predate what the feed already showed.
func verifyHistoryAgainstFeed(ctx context.Context, config *Config, observed []model.Snapshot) error {
	if len(observed) == 0 {
		return nil
	}
	last := observed[len(observed)-1]

	for cityID := range last.Cities {
		records, err := fetchHistory(ctx, config, cityID, 1)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("history empty for city %q after %d snapshots", cityID, len(observed))
		}
		if records[0].GeneratedAt.Before(last.Cities[cityID].GeneratedAt) {
			return fmt.Errorf("history for %q lags the live feed", cityID)
		}
		// One city suffices; the buffer is shared.
		return nil
	}
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "feed watch complete",
		logger.Int("snapshots_observed", stats.SnapshotsObserved),
		logger.Int("cities_per_snapshot", stats.CitiesPerSnapshot),
		logger.Any("scenario_applied", stats.ScenarioApplied),
		logger.Any("override_observed", stats.OverrideObserved),
		logger.Int("fallbacks_seen", stats.FallbacksSeen),
		logger.Duration("duration", stats.Duration),
	)
}
