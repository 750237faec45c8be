// Package model contains domain models passed between layers.
package model

import "time"

// CityState is the state computed for one city on one tick. The multiplier
// and explanation are always derived from the metric triple carried in the
// same value; readers never observe a partial update.
type CityState struct {
	CityID          string    `json:"city_id"`
	FuelPrice       float64   `json:"fuel_price"`
	CongestionIndex int       `json:"congestion_index"`
	DemandLevel     int       `json:"demand_level"`
	PriceMultiplier float64   `json:"price_multiplier"`
	Explanation     string    `json:"explanation"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Snapshot is the full city->state mapping produced by one tick. It is
// published as a single event so consumers never see a mix of two ticks.
type Snapshot struct {
	Tick    uint64               `json:"tick"`
	TakenAt time.Time            `json:"taken_at"`
	Cities  map[string]CityState `json:"cities"`
}

// Clone returns a deep copy of the snapshot so holders can hand it out
// without sharing the backing map.
func (s Snapshot) Clone() Snapshot {
	cities := make(map[string]CityState, len(s.Cities))
	for id, st := range s.Cities {
		cities[id] = st
	}
	return Snapshot{Tick: s.Tick, TakenAt: s.TakenAt, Cities: cities}
}

// HistoryRecord is a CityState retained in the bounded history log.
type HistoryRecord = CityState

// MetricOverrides is a partial set of forced metric values. Nil fields keep
// the freshly sampled value.
type MetricOverrides struct {
	FuelPrice       *float64 `json:"fuel_price,omitempty"`
	CongestionIndex *int     `json:"congestion_index,omitempty"`
	DemandLevel     *int     `json:"demand_level,omitempty"`
}

// IsEmpty reports whether no field is forced.
func (o MetricOverrides) IsEmpty() bool {
	return o.FuelPrice == nil && o.CongestionIndex == nil && o.DemandLevel == nil
}

// Fields lists the names of the forced fields.
func (o MetricOverrides) Fields() []string {
	var fields []string
	if o.FuelPrice != nil {
		fields = append(fields, "fuel_price")
	}
	if o.CongestionIndex != nil {
		fields = append(fields, "congestion_index")
	}
	if o.DemandLevel != nil {
		fields = append(fields, "demand_level")
	}
	return fields
}

// ScenarioOverride forces a subset of one city's metrics until ExpiresAt.
// At most one override is active per city; a new one replaces the old.
type ScenarioOverride struct {
	CityID    string          `json:"city_id"`
	Overrides MetricOverrides `json:"overrides"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// ExpiredAt reports whether the override is no longer in force at now.
func (s ScenarioOverride) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
