package scenario

import (
	"fmt"
	"sort"
	"time"

	"github.com/surgecast/surgecast/internal/domain/model"
)

// Predefined scenario kinds. These are configuration, not engine logic: the
// registry itself accepts any field subset and duration.
const (
	KindDemandSurge   = "demand_surge"
	KindFuelSpike     = "fuel_spike"
	KindCongestionJam = "congestion_jam"
	KindCrisis        = "crisis"
)

// Kind is one catalog entry: a named effect resolved to a field set and
// duration when a scenario request names it.
type Kind struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Overrides   model.MetricOverrides `json:"overrides"`
	Duration    time.Duration         `json:"-"`
	DurationMS  int64                 `json:"duration_ms"`
}

// Catalog resolves scenario kind names to their effects.
type Catalog struct {
	kinds map[string]Kind
}

// NewCatalog builds the predefined kind set. Forced maxima come from the
// configured metric ranges; every kind shares the default duration.
func NewCatalog(fuelMax float64, duration time.Duration) *Catalog {
	maxIdx := maxIndex

	kinds := []Kind{
		{
			Name:        KindDemandSurge,
			Description: "forces customer demand to its maximum",
			Overrides:   model.MetricOverrides{DemandLevel: &maxIdx},
		},
		{
			Name:        KindFuelSpike,
			Description: "forces fuel price to the top of its range",
			Overrides:   model.MetricOverrides{FuelPrice: &fuelMax},
		},
		{
			Name:        KindCongestionJam,
			Description: "forces the congestion index to its maximum",
			Overrides:   model.MetricOverrides{CongestionIndex: &maxIdx},
		},
		{
			Name:        KindCrisis,
			Description: "forces fuel price, congestion and demand to their maxima",
			Overrides: model.MetricOverrides{
				FuelPrice:       &fuelMax,
				CongestionIndex: &maxIdx,
				DemandLevel:     &maxIdx,
			},
		},
	}

	byName := make(map[string]Kind, len(kinds))
	for _, k := range kinds {
		k.Duration = duration
		k.DurationMS = duration.Milliseconds()
		byName[k.Name] = k
	}

	return &Catalog{kinds: byName}
}

// Resolve looks up a kind by name.
func (c *Catalog) Resolve(name string) (Kind, error) {
	k, ok := c.kinds[name]
	if !ok {
		return Kind{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

// Kinds lists every catalog entry, sorted by name.
func (c *Catalog) Kinds() []Kind {
	out := make([]Kind, 0, len(c.kinds))
	for _, k := range c.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
