// Package scenario manages time-bounded metric overrides, keyed by city.
// At most one override is active per city; applying a new one replaces the
// old together with its expiry.
package scenario

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/surgecast/surgecast/internal/domain/model"
	"github.com/surgecast/surgecast/pkg/logger"
	"github.com/surgecast/surgecast/pkg/metrics"
)

// Override value bounds, matching the scorer's accepted input range.
const (
	minFuelPrice = 1.0
	maxFuelPrice = 3.0
	minIndex     = 1
	maxIndex     = 10
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithNow sets the clock used for expiry checks.
func WithNow(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// Registry holds the active overrides. Apply calls may arrive concurrently
// from the API layer while the scheduler reads every tick; the mutex gives
// same-city applies a total order so the last write wins.
type Registry struct {
	mu     sync.Mutex
	active map[string]model.ScenarioOverride
	cities map[string]struct{}
	now    func() time.Time
	log    logger.Logger
}

// New creates a registry scoped to the configured city set.
func New(cities []string, opts ...Option) *Registry {
	known := make(map[string]struct{}, len(cities))
	for _, id := range cities {
		known[id] = struct{}{}
	}

	r := &Registry{
		active: make(map[string]model.ScenarioOverride),
		cities: known,
		now:    time.Now,
		log:    logger.Named("scenario"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Apply validates and installs an override. An existing override for the
// same city is replaced, expiry included. The override becomes visible to
// the next tick; the in-flight tick may or may not observe it.
func (r *Registry) Apply(ctx context.Context, cityID string, overrides model.MetricOverrides, duration time.Duration) (model.ScenarioOverride, error) {
	if err := r.validate(cityID, overrides, duration); err != nil {
		metrics.RecordScenarioRejected()
		return model.ScenarioOverride{}, err
	}

	ov := model.ScenarioOverride{
		CityID:    cityID,
		Overrides: overrides,
		ExpiresAt: r.now().Add(duration),
	}

	r.mu.Lock()
	r.active[cityID] = ov
	count := len(r.active)
	r.mu.Unlock()

	metrics.RecordScenarioApplied()
	metrics.UpdateOverridesActive(count)

	r.log.Info(ctx, "scenario override applied",
		logger.String("city_id", cityID),
		logger.Any("fields", overrides.Fields()),
		logger.Duration("duration", duration),
	)

	return ov, nil
}

// Active returns the unexpired override for a city, if any. Expired entries
// are swept lazily on read so no tick at or past expiry observes them.
func (r *Registry) Active(ctx context.Context, cityID string) (model.MetricOverrides, bool) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	ov, ok := r.active[cityID]
	if !ok {
		return model.MetricOverrides{}, false
	}
	if ov.ExpiredAt(now) {
		r.expireLocked(ctx, cityID)
		return model.MetricOverrides{}, false
	}
	return ov.Overrides, true
}

// ActiveOverrides returns every unexpired override, sweeping expired ones.
func (r *Registry) ActiveOverrides(ctx context.Context) []model.ScenarioOverride {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.ScenarioOverride, 0, len(r.active))
	for id, ov := range r.active {
		if ov.ExpiredAt(now) {
			r.expireLocked(ctx, id)
			continue
		}
		out = append(out, ov)
	}
	return out
}

// ActiveCount returns the number of unexpired overrides.
func (r *Registry) ActiveCount(ctx context.Context) int {
	return len(r.ActiveOverrides(ctx))
}

// expireLocked removes one expired override. Caller holds r.mu.
func (r *Registry) expireLocked(ctx context.Context, cityID string) {
	delete(r.active, cityID)
	metrics.RecordScenarioExpired()
	metrics.UpdateOverridesActive(len(r.active))

	r.log.Debug(ctx, "scenario override expired", logger.String("city_id", cityID))
}

// validate rejects requests before any state mutation.
func (r *Registry) validate(cityID string, overrides model.MetricOverrides, duration time.Duration) error {
	if _, ok := r.cities[cityID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCity, cityID)
	}
	if overrides.IsEmpty() {
		return ErrNoEffect
	}
	if duration <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidDuration, duration)
	}

	if f := overrides.FuelPrice; f != nil && (*f < minFuelPrice || *f > maxFuelPrice) {
		return fmt.Errorf("%w: fuel price %.2f outside [%.2f, %.2f]", ErrInvalidValue, *f, minFuelPrice, maxFuelPrice)
	}
	if c := overrides.CongestionIndex; c != nil && (*c < minIndex || *c > maxIndex) {
		return fmt.Errorf("%w: congestion index %d outside [%d, %d]", ErrInvalidValue, *c, minIndex, maxIndex)
	}
	if d := overrides.DemandLevel; d != nil && (*d < minIndex || *d > maxIndex) {
		return fmt.Errorf("%w: demand level %d outside [%d, %d]", ErrInvalidValue, *d, minIndex, maxIndex)
	}

	return nil
}
