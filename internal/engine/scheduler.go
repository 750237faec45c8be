// Package engine runs the simulation loop. On every tick it samples each
// city's metrics, applies any unexpired scenario overrides, scores the
// cities concurrently, and publishes exactly one snapshot.
package engine

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/surgecast/surgecast/internal/adapters/broadcast"
	"github.com/surgecast/surgecast/internal/adapters/repository"
	"github.com/surgecast/surgecast/internal/domain/model"
	"github.com/surgecast/surgecast/internal/domain/pricing"
	"github.com/surgecast/surgecast/internal/domain/scenario"
	"github.com/surgecast/surgecast/pkg/logger"
	"github.com/surgecast/surgecast/pkg/metrics"
)

// Scheduler orchestrates one tick: override read, metric synthesis,
// scoring, store write, history append, broadcast publish. It is the single
// writer of the state store and history.
type Scheduler struct {
	cities   []string
	scorer   pricing.Scorer
	registry *scenario.Registry
	store    *repository.StateStore
	history  *repository.History
	hub      *broadcast.Hub

	interval       time.Duration
	scoringTimeout time.Duration
	fuelMin        float64
	fuelMax        float64

	clock Clock
	rng   *rand.Rand
	log   logger.Logger

	mu      sync.Mutex
	running bool
	tick    uint64
}

// New creates a scheduler over the given collaborators.
func New(
	cities []string,
	scorer pricing.Scorer,
	registry *scenario.Registry,
	store *repository.StateStore,
	history *repository.History,
	hub *broadcast.Hub,
	opts ...Option,
) (*Scheduler, error) {
	if len(cities) == 0 {
		return nil, ErrNoCities
	}

	ordered := append([]string{}, cities...)
	sort.Strings(ordered)

	s := &Scheduler{
		cities:         ordered,
		scorer:         scorer,
		registry:       registry,
		store:          store,
		history:        history,
		hub:            hub,
		interval:       defaultTickInterval,
		scoringTimeout: defaultScoringTimeout,
		fuelMin:        defaultFuelMin,
		fuelMax:        defaultFuelMax,
		clock:          NewRealClock(),
		rng:            rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible behavior
		log:            logger.Named("engine"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Run executes the tick loop until ctx is cancelled. The first tick fires
// immediately so subscribers are not blank for a full interval.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.log.Info(ctx, "scheduler started",
		logger.Int("cities", len(s.cities)),
		logger.Duration("interval", s.interval),
	)

	s.runTick(ctx)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "scheduler stopped", logger.Any("ticks", s.Tick()))
			return ctx.Err()
		case <-ticker.C():
			s.runTick(ctx)
		}
	}
}

// Tick returns the number of completed ticks.
func (s *Scheduler) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// runTick produces and publishes one snapshot. A city whose scoring fails
// gets the deterministic fallback; the tick itself never aborts.
func (s *Scheduler) runTick(ctx context.Context) {
	started := s.clock.Now()

	s.mu.Lock()
	s.tick++
	tick := s.tick
	s.mu.Unlock()

	inputs := make([]pricing.Input, len(s.cities))
	for i, cityID := range s.cities {
		inputs[i] = s.synthesize(ctx, cityID)
	}

	states := make([]model.CityState, len(inputs))

	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in pricing.Input) {
			defer wg.Done()
			states[i] = s.score(ctx, in, started)
		}(i, in)
	}
	wg.Wait()

	cities := make(map[string]model.CityState, len(states))
	for _, state := range states {
		cities[state.CityID] = state
	}
	snapshot := model.Snapshot{Tick: tick, TakenAt: started, Cities: cities}

	s.store.Replace(snapshot)
	for _, state := range states {
		s.history.Append(state)
	}
	s.hub.Publish(ctx, snapshot)

	elapsed := s.clock.Now().Sub(started)
	metrics.RecordTickCompleted()
	metrics.RecordTickDuration(float64(elapsed.Milliseconds()))

	s.log.Debug(ctx, "tick completed",
		logger.Any("tick", tick),
		logger.Duration("elapsed", elapsed),
	)
}

// synthesize samples a city's metric triple, substituting any active
// override field for the sampled value.
func (s *Scheduler) synthesize(ctx context.Context, cityID string) pricing.Input {
	in := pricing.Input{
		CityID:          cityID,
		FuelPrice:       s.fuelMin + s.rng.Float64()*(s.fuelMax-s.fuelMin),
		CongestionIndex: 1 + s.rng.Intn(10),
		DemandLevel:     1 + s.rng.Intn(10),
	}

	overrides, ok := s.registry.Active(ctx, cityID)
	if !ok {
		return in
	}
	if overrides.FuelPrice != nil {
		in.FuelPrice = *overrides.FuelPrice
	}
	if overrides.CongestionIndex != nil {
		in.CongestionIndex = *overrides.CongestionIndex
	}
	if overrides.DemandLevel != nil {
		in.DemandLevel = *overrides.DemandLevel
	}
	return in
}

// score runs one city's scoring call under the per-call timeout and builds
// its state. The multiplier and explanation always derive from the same
// triple carried in the returned state.
func (s *Scheduler) score(ctx context.Context, in pricing.Input, generatedAt time.Time) model.CityState {
	scoringCtx, cancel := context.WithTimeout(ctx, s.scoringTimeout)
	defer cancel()

	began := s.clock.Now()
	result, err := s.scorer.Score(scoringCtx, in)
	metrics.RecordScoringLatency(float64(s.clock.Now().Sub(began).Milliseconds()))

	if err != nil {
		metrics.RecordScoringError()
		metrics.RecordScoringFallback()
		s.log.Warn(ctx, "scoring failed, using fallback",
			logger.String("city_id", in.CityID),
			logger.Error(err),
		)
		result = pricing.FallbackResult(in)
	}

	return model.CityState{
		CityID:          in.CityID,
		FuelPrice:       in.FuelPrice,
		CongestionIndex: in.CongestionIndex,
		DemandLevel:     in.DemandLevel,
		PriceMultiplier: result.Multiplier,
		Explanation:     result.Explanation,
		GeneratedAt:     generatedAt,
	}
}
