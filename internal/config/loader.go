package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if SURGECAST_CONFIG is set
//  3. env (prefix SURGECAST_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SURGECAST_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SURGECAST_ADDR, SURGECAST_TICK_INTERVAL_MS, ...
	// Map env keys like SURGECAST_TICK_INTERVAL_MS -> tick_interval_ms (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SURGECAST_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "surgecast_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine cannot start with.
func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case len(cfg.Cities) == 0:
		return fmt.Errorf("%w: cities must not be empty", ErrInvalidConfig)
	case cfg.TickIntervalMS <= 0:
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalidConfig)
	case cfg.FuelPriceMin <= 0 || cfg.FuelPriceMax <= cfg.FuelPriceMin:
		return fmt.Errorf("%w: fuel price range must satisfy 0 < min < max", ErrInvalidConfig)
	case cfg.HistoryCapacity <= 0:
		return fmt.Errorf("%w: history_capacity must be positive", ErrInvalidConfig)
	case cfg.ScoringTimeoutMS <= 0:
		return fmt.Errorf("%w: scoring_timeout_ms must be positive", ErrInvalidConfig)
	case cfg.ScenarioDurationMS <= 0:
		return fmt.Errorf("%w: scenario_duration_ms must be positive", ErrInvalidConfig)
	case cfg.SubscriberBuffer <= 0:
		return fmt.Errorf("%w: subscriber_buffer must be positive", ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(cfg.Cities))
	for _, city := range cfg.Cities {
		if strings.TrimSpace(city) == "" {
			return fmt.Errorf("%w: city ids must not be blank", ErrInvalidConfig)
		}
		if _, dup := seen[city]; dup {
			return fmt.Errorf("%w: duplicate city id %q", ErrInvalidConfig, city)
		}
		seen[city] = struct{}{}
	}
	return nil
}
