package feedwatch

import (
	"fmt"

	"github.com/surgecast/surgecast/internal/domain/model"
)

// Explanation attached to states computed without the pricing model.
const fallbackExplanation = "Price estimated with baseline heuristics; pricing model unavailable."

// verifySnapshots checks the ordering and completeness guarantees of the
// observed stream: ticks strictly increase and every snapshot carries a
// state for every configured city.
func verifySnapshots(snapshots []model.Snapshot, cities []string, stats *Stats) error {
	if len(snapshots) == 0 {
		return fmt.Errorf("no snapshots observed")
	}

	for i := 1; i < len(snapshots); i++ {
		if snapshots[i].Tick <= snapshots[i-1].Tick {
			return fmt.Errorf("tick order violated: snapshot %d has tick %d after tick %d",
				i, snapshots[i].Tick, snapshots[i-1].Tick)
		}
		if snapshots[i].TakenAt.Before(snapshots[i-1].TakenAt) {
			return fmt.Errorf("time order violated at snapshot %d", i)
		}
	}

	for i, snapshot := range snapshots {
		for _, cityID := range cities {
			state, ok := snapshot.Cities[cityID]
			if !ok {
				return fmt.Errorf("snapshot %d (tick %d) missing city %q", i, snapshot.Tick, cityID)
			}
			if state.Explanation == fallbackExplanation {
				stats.FallbacksSeen++
			}
		}
		if len(snapshot.Cities) != len(cities) {
			return fmt.Errorf("snapshot %d has %d cities, expected %d",
				i, len(snapshot.Cities), len(cities))
		}
	}

	stats.SnapshotsObserved = len(snapshots)
	stats.CitiesPerSnapshot = len(cities)
	return nil
}

// verifyOverride checks that at least one snapshot after the scenario was
// applied shows the forced effect on the targeted city.
func verifyOverride(snapshots []model.Snapshot, applied scenarioResponse) error {
	for _, snapshot := range snapshots {
		state, ok := snapshot.Cities[applied.CityID]
		if !ok {
			continue
		}
		if overrideVisible(state, applied.Effects) {
			return nil
		}
	}
	return fmt.Errorf("override on %q (%s) never became visible in %d snapshots",
		applied.CityID, applied.Kind, len(snapshots))
}

// overrideVisible reports whether a state shows every forced field pinned
// at its catalog maximum.
func overrideVisible(state model.CityState, effects []string) bool {
	for _, effect := range effects {
		switch effect {
		case "demand_level":
			if state.DemandLevel != 10 {
				return false
			}
		case "congestion_index":
			if state.CongestionIndex != 10 {
				return false
			}
		case "fuel_price":
			// The catalog pins fuel to the top of its sampled range, which
			// random sampling never reaches exactly.
			if state.FuelPrice < 2.49 {
				return false
			}
		}
	}
	return len(effects) > 0
}
