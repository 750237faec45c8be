package engine

import (
	"math/rand"
	"time"
)

// Default scheduler configuration constants.
const (
	defaultTickInterval   = 5 * time.Second
	defaultScoringTimeout = 2 * time.Second
	defaultFuelMin        = 1.50
	defaultFuelMax        = 2.50
	defaultRandomSeed     = 1
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithInterval sets the tick cadence.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithScoringTimeout sets the per-city scoring deadline.
func WithScoringTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.scoringTimeout = timeout
		}
	}
}

// WithFuelRange sets the sampled fuel price range.
func WithFuelRange(minPrice, maxPrice float64) Option {
	return func(s *Scheduler) {
		if minPrice > 0 && maxPrice > minPrice {
			s.fuelMin = minPrice
			s.fuelMax = maxPrice
		}
	}
}

// WithClock sets the clock, letting tests control time.
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSeed sets the metric sampling seed.
func WithSeed(seed int64) Option {
	return func(s *Scheduler) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible behavior
	}
}
