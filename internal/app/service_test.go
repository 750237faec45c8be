package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	app "github.com/surgecast/surgecast/internal/app"
	"github.com/surgecast/surgecast/internal/adapters/repository"
	"github.com/surgecast/surgecast/internal/config"
	"github.com/surgecast/surgecast/internal/domain/pricing"
	scenario "github.com/surgecast/surgecast/internal/domain/scenario"
	. "github.com/smartystreets/goconvey/convey"
)

var ctx = context.Background()

type quickScorer struct{}

func (quickScorer) Score(_ context.Context, in pricing.Input) (pricing.Result, error) {
	return pricing.Result{Multiplier: 1.1, Explanation: "quick"}, nil
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Cities = []string{"chicago", "miami"}
	cfg.TickIntervalMS = 20
	cfg.ScoringLatencyMinMS = 1
	cfg.ScoringLatencyMaxMS = 2
	cfg.HistoryCapacity = 50
	return cfg
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service built from configuration", t, func() {
		svc, err := app.New(testConfig(), app.WithScorer(quickScorer{}))
		So(err, ShouldBeNil)

		Convey("When the service runs through a few ticks", func() {
			sub, err := svc.Subscribe(ctx)
			So(err, ShouldBeNil)

			So(svc.Start(ctx), ShouldBeNil)
			defer func() { So(svc.Stop(ctx), ShouldBeNil) }()

			first := <-sub.C

			Convey("Then subscribers should receive full snapshots", func() {
				So(first.Tick, ShouldEqual, 1)
				So(len(first.Cities), ShouldEqual, 2)
				So(first.Cities["chicago"].PriceMultiplier, ShouldEqual, 1.1)
			})

			Convey("And the query boundaries should reflect the simulation", func() {
				snapshot, err := svc.Snapshot(ctx)
				So(err, ShouldBeNil)
				So(len(snapshot.Cities), ShouldEqual, 2)

				state, err := svc.CityState(ctx, "chicago")
				So(err, ShouldBeNil)
				So(state.CityID, ShouldEqual, "chicago")

				records := svc.History(ctx, "chicago", 10)
				So(len(records), ShouldBeGreaterThanOrEqualTo, 1)
			})

			Convey("And stats should report the configured shape", func() {
				stats := svc.GetStats(ctx)
				So(stats.Tick, ShouldBeGreaterThanOrEqualTo, 1)
				So(stats.Cities, ShouldResemble, []string{"chicago", "miami"})
				So(stats.HistoryCapacity, ShouldEqual, 50)
			})
		})

		Convey("When the service stops", func() {
			sub, err := svc.Subscribe(ctx)
			So(err, ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			<-sub.C
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then subscriber channels should close", func() {
				for range sub.C {
				}
				_, open := <-sub.C
				So(open, ShouldBeFalse)
			})
		})
	})
}

func TestService_ApplyScenario(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc, err := app.New(testConfig(), app.WithScorer(quickScorer{}))
		So(err, ShouldBeNil)

		Convey("When applying a known scenario kind", func() {
			result, err := svc.ApplyScenario(ctx, scenario.KindDemandSurge, "chicago")

			Convey("Then it should be accepted with its effects", func() {
				So(err, ShouldBeNil)
				So(result.Accepted, ShouldBeTrue)
				So(result.Effects, ShouldResemble, []string{"demand_level"})
				So(result.ExpiresAt.After(time.Now()), ShouldBeTrue)
			})
		})

		Convey("When applying an unknown kind", func() {
			_, err := svc.ApplyScenario(ctx, "meteor_strike", "chicago")

			Convey("Then it should report the unknown kind", func() {
				So(errors.Is(err, scenario.ErrUnknownKind), ShouldBeTrue)
			})
		})

		Convey("When applying to an unknown city", func() {
			_, err := svc.ApplyScenario(ctx, scenario.KindCrisis, "atlantis")

			Convey("Then it should report the unknown city", func() {
				So(errors.Is(err, scenario.ErrUnknownCity), ShouldBeTrue)
			})
		})

		Convey("When listing the catalog", func() {
			kinds := svc.ScenarioKinds(ctx)

			Convey("Then all predefined kinds should be present", func() {
				So(len(kinds), ShouldEqual, 4)
			})
		})
	})
}

func TestService_QueriesBeforeFirstTick(t *testing.T) {
	Convey("Given a service that has not started", t, func() {
		svc, err := app.New(testConfig(), app.WithScorer(quickScorer{}))
		So(err, ShouldBeNil)

		Convey("When querying the snapshot", func() {
			_, err := svc.Snapshot(ctx)

			Convey("Then it should report no snapshot yet", func() {
				So(errors.Is(err, repository.ErrNoSnapshot), ShouldBeTrue)
			})
		})

		Convey("When querying history", func() {
			records := svc.History(ctx, "", 0)

			Convey("Then it should be empty", func() {
				So(records, ShouldBeEmpty)
			})
		})
	})
}
