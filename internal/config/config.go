// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Cities lists the simulated city identifiers. Must not be empty.
	Cities []string `koanf:"cities"`

	// TickIntervalMS sets the simulation cadence in milliseconds.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// FuelPriceMin and FuelPriceMax bound the sampled fuel price range.
	FuelPriceMin float64 `koanf:"fuel_price_min"`
	FuelPriceMax float64 `koanf:"fuel_price_max"`

	// HistoryCapacity fixes the history ring buffer size.
	HistoryCapacity int `koanf:"history_capacity"`

	// ScoringTimeoutMS bounds a single scoring call.
	ScoringTimeoutMS int `koanf:"scoring_timeout_ms"`

	// ScoringLatencyMinMS and ScoringLatencyMaxMS simulate model latency bounds
	// for the in-process scorer.
	ScoringLatencyMinMS int `koanf:"scoring_latency_min_ms"`
	ScoringLatencyMaxMS int `koanf:"scoring_latency_max_ms"`

	// ScorerCommand optionally names an external scoring executable. When
	// empty the in-process model scorer is used.
	ScorerCommand string `koanf:"scorer_command"`

	// ScenarioDurationMS sets the default lifetime of an applied scenario.
	ScenarioDurationMS int `koanf:"scenario_duration_ms"`

	// SubscriberBuffer bounds each subscriber's delivery queue.
	SubscriberBuffer int `koanf:"subscriber_buffer"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		Cities:              []string{"new-york", "chicago", "los-angeles", "houston", "miami"},
		TickIntervalMS:      5000,
		FuelPriceMin:        1.50,
		FuelPriceMax:        2.50,
		HistoryCapacity:     100,
		ScoringTimeoutMS:    2000,
		ScoringLatencyMinMS: 80,
		ScoringLatencyMaxMS: 150,
		ScorerCommand:       "",
		ScenarioDurationMS:  120_000,
		SubscriberBuffer:    16,
	}
	return c
}
