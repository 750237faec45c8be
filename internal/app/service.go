// Package app wires the domain components into one service facade consumed
// by the transport layer.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/surgecast/surgecast/internal/adapters/broadcast"
	"github.com/surgecast/surgecast/internal/adapters/repository"
	"github.com/surgecast/surgecast/internal/config"
	"github.com/surgecast/surgecast/internal/domain/model"
	"github.com/surgecast/surgecast/internal/domain/pricing"
	"github.com/surgecast/surgecast/internal/domain/scenario"
	"github.com/surgecast/surgecast/internal/engine"
	"github.com/surgecast/surgecast/pkg/logger"
)

// ScenarioResult reports an accepted scenario application.
type ScenarioResult struct {
	Accepted  bool          `json:"accepted"`
	Kind      string        `json:"kind"`
	CityID    string        `json:"city_id"`
	Effects   []string      `json:"effects"`
	Duration  time.Duration `json:"-"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// Stats summarizes the running simulation.
type Stats struct {
	Tick            uint64                   `json:"tick"`
	Cities          []string                 `json:"cities"`
	Subscribers     int                      `json:"subscribers"`
	HistoryLen      int                      `json:"history_len"`
	HistoryCapacity int                      `json:"history_capacity"`
	ActiveOverrides []model.ScenarioOverride `json:"active_overrides"`
	UptimeSeconds   float64                  `json:"uptime_seconds"`
}

// Service owns the simulation components and exposes the query, scenario
// and subscription boundaries.
type Service struct {
	cfg       *config.Config
	scorer    pricing.Scorer
	registry  *scenario.Registry
	catalog   *scenario.Catalog
	store     *repository.StateStore
	history   *repository.History
	hub       *broadcast.Hub
	scheduler *engine.Scheduler
	clock     engine.Clock
	log       logger.Logger

	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScorer overrides the scorer built from configuration.
func WithScorer(scorer pricing.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithClock sets the scheduler clock, letting tests control time.
func WithClock(clock engine.Clock) Option {
	return func(s *Service) {
		// Recorded here; applied when the scheduler is built in New.
		s.clock = clock
	}
}

// New builds the full component graph from configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		cfg: cfg,
		log: logger.Named("app"),
	}

	s.scorer = buildScorer(cfg)

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	var regOpts []scenario.Option
	if s.clock != nil {
		regOpts = append(regOpts, scenario.WithNow(s.clock.Now))
	}
	s.registry = scenario.New(cfg.Cities, regOpts...)
	s.catalog = scenario.NewCatalog(cfg.FuelPriceMax, time.Duration(cfg.ScenarioDurationMS)*time.Millisecond)
	s.store = repository.NewStateStore()

	history, err := repository.NewHistory(cfg.HistoryCapacity)
	if err != nil {
		return nil, err
	}
	s.history = history

	s.hub = broadcast.NewHub(broadcast.WithSubscriberBuffer(cfg.SubscriberBuffer))

	schedOpts := []engine.Option{
		engine.WithInterval(time.Duration(cfg.TickIntervalMS) * time.Millisecond),
		engine.WithScoringTimeout(time.Duration(cfg.ScoringTimeoutMS) * time.Millisecond),
		engine.WithFuelRange(cfg.FuelPriceMin, cfg.FuelPriceMax),
	}
	if s.clock != nil {
		schedOpts = append(schedOpts, engine.WithClock(s.clock))
	}

	scheduler, err := engine.New(cfg.Cities, s.scorer, s.registry, s.store, s.history, s.hub, schedOpts...)
	if err != nil {
		return nil, err
	}
	s.scheduler = scheduler

	return s, nil
}

// buildScorer selects the subprocess bridge when a command is configured
// and the in-process model otherwise.
func buildScorer(cfg *config.Config) pricing.Scorer {
	if cfg.ScorerCommand != "" {
		return pricing.NewCommandScorer(cfg.ScorerCommand,
			pricing.WithCommandTimeout(time.Duration(cfg.ScoringTimeoutMS)*time.Millisecond),
		)
	}
	return pricing.NewModelScorer(
		pricing.WithLatencyRange(
			time.Duration(cfg.ScoringLatencyMinMS)*time.Millisecond,
			time.Duration(cfg.ScoringLatencyMaxMS)*time.Millisecond,
		),
	)
}

// Start launches the simulation loop.
func (s *Service) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = time.Now()

	go func() {
		defer close(s.done)
		if err := s.scheduler.Run(runCtx); err != nil && runCtx.Err() == nil {
			s.log.Error(runCtx, "scheduler exited", logger.Error(err))
		}
	}()

	s.log.Info(ctx, "service started",
		logger.Any("cities", s.cfg.Cities),
		logger.Int("tick_interval_ms", s.cfg.TickIntervalMS),
	)
	return nil
}

// Stop halts the loop and drops every subscriber.
func (s *Service) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	s.hub.Close(ctx)

	s.log.Info(ctx, "service stopped", logger.Any("ticks", s.scheduler.Tick()))
	return nil
}

// ApplyScenario resolves a catalog kind and installs the override.
func (s *Service) ApplyScenario(ctx context.Context, kind, cityID string) (ScenarioResult, error) {
	k, err := s.catalog.Resolve(kind)
	if err != nil {
		return ScenarioResult{}, err
	}

	ov, err := s.registry.Apply(ctx, cityID, k.Overrides, k.Duration)
	if err != nil {
		return ScenarioResult{}, err
	}

	return ScenarioResult{
		Accepted:  true,
		Kind:      k.Name,
		CityID:    cityID,
		Effects:   k.Overrides.Fields(),
		Duration:  k.Duration,
		ExpiresAt: ov.ExpiresAt,
	}, nil
}

// ScenarioKinds lists the catalog for discovery.
func (s *Service) ScenarioKinds(_ context.Context) []scenario.Kind {
	return s.catalog.Kinds()
}

// Snapshot returns the current full city mapping.
func (s *Service) Snapshot(_ context.Context) (model.Snapshot, error) {
	return s.store.GetAll()
}

// CityState returns the current state for one city.
func (s *Service) CityState(_ context.Context, cityID string) (model.CityState, error) {
	return s.store.Get(cityID)
}

// History returns up to limit retained records newest-first, optionally
// scoped to one city.
func (s *Service) History(_ context.Context, cityID string, limit int) []model.HistoryRecord {
	return s.history.Recent(cityID, limit)
}

// Hub exposes the broadcast hub for transport adapters.
func (s *Service) Hub() *broadcast.Hub {
	return s.hub
}

// Subscribe attaches a new snapshot stream.
func (s *Service) Subscribe(ctx context.Context) (broadcast.Subscription, error) {
	return s.hub.Subscribe(ctx)
}

// Unsubscribe releases a subscriber's hub resources.
func (s *Service) Unsubscribe(ctx context.Context, id uuid.UUID) error {
	return s.hub.Unsubscribe(ctx, id)
}

// GetStats summarizes the running simulation for the stats endpoint.
func (s *Service) GetStats(ctx context.Context) Stats {
	return Stats{
		Tick:            s.scheduler.Tick(),
		Cities:          s.cfg.Cities,
		Subscribers:     s.hub.SubscriberCount(),
		HistoryLen:      s.history.Len(),
		HistoryCapacity: s.history.Capacity(),
		ActiveOverrides: s.registry.ActiveOverrides(ctx),
		UptimeSeconds:   time.Since(s.started).Seconds(),
	}
}
