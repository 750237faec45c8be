package pricing

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Default model scorer configuration constants.
const (
	defaultMinLatency = 80 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond
	defaultRandomSeed = 42

	// Impact slopes of the synthetic pricing model.
	fuelImpactSlope       = 0.2
	congestionImpactSlope = 0.033
	demandImpactSlope     = 0.033
)

// Option applies a configuration option to the ModelScorer.
type Option func(*ModelScorer)

// WithLatencyRange sets the simulated latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *ModelScorer) {
		if minLatency > 0 && maxLatency > minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithSeed sets the random seed used for latency simulation.
func WithSeed(seed int64) Option {
	return func(s *ModelScorer) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible behavior
	}
}

// ModelScorer implements Scorer with an in-process pricing model. It mirrors
// the multiplicative impact curve the trained regressor was fitted on and
// simulates the latency of an external model service.
type ModelScorer struct {
	// Simulated latency range
	minLatency time.Duration
	maxLatency time.Duration
	// Guarded rng; Score is called concurrently across cities.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewModelScorer creates a new in-process scorer with configuration options.
func NewModelScorer(opts ...Option) *ModelScorer {
	s := &ModelScorer{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible behavior
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score computes a multiplier for the given input.
func (s *ModelScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	// Simulate model service latency
	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("%w: %w", ErrScoringTimeout, ctx.Err())
	case <-time.After(s.latency()):
	}

	// Multiplicative impact curve: each metric scales the base price
	// independently, matching the shape the regressor was trained on.
	fuelImpact := 1.0 + (in.FuelPrice-1.0)*fuelImpactSlope
	congestionImpact := 1.0 + float64(in.CongestionIndex-1)*congestionImpactSlope
	demandImpact := 1.0 + float64(in.DemandLevel-1)*demandImpactSlope

	multiplier := fuelImpact * congestionImpact * demandImpact
	multiplier = math.Max(MinMultiplier, math.Min(MaxMultiplier, multiplier))

	return Result{
		Multiplier:  multiplier,
		Explanation: explain(in, multiplier),
	}, nil
}

// latency draws a simulated latency from the configured range.
func (s *ModelScorer) latency() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxLatency <= s.minLatency {
		return s.minLatency
	}
	return s.minLatency + time.Duration(s.rng.Int63n(int64(s.maxLatency-s.minLatency)))
}
