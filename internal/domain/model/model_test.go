package model_test

import (
	"testing"
	"time"

	model "github.com/surgecast/surgecast/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestCityState(t *testing.T) {
	convey.Convey("Given a CityState struct", t, func() {
		convey.Convey("When creating a new state", func() {
			now := time.Now()
			state := model.CityState{
				CityID:          "chicago",
				FuelPrice:       2.10,
				CongestionIndex: 7,
				DemandLevel:     6,
				PriceMultiplier: 1.32,
				Explanation:     "Price driven by heavy traffic conditions.",
				GeneratedAt:     now,
			}

			convey.Convey("Then it should have the correct values", func() {
				convey.So(state.CityID, convey.ShouldEqual, "chicago")
				convey.So(state.FuelPrice, convey.ShouldEqual, 2.10)
				convey.So(state.CongestionIndex, convey.ShouldEqual, 7)
				convey.So(state.DemandLevel, convey.ShouldEqual, 6)
				convey.So(state.PriceMultiplier, convey.ShouldEqual, 1.32)
				convey.So(state.GeneratedAt, convey.ShouldEqual, now)
			})
		})

		convey.Convey("When creating a state with zero values", func() {
			state := model.CityState{}

			convey.Convey("Then it should have default values", func() {
				convey.So(state.CityID, convey.ShouldEqual, "")
				convey.So(state.PriceMultiplier, convey.ShouldEqual, 0.0)
				convey.So(state.GeneratedAt, convey.ShouldEqual, time.Time{})
			})
		})
	})
}

func TestSnapshotClone(t *testing.T) {
	convey.Convey("Given a snapshot with two cities", t, func() {
		snap := model.Snapshot{
			Tick:    3,
			TakenAt: time.Now(),
			Cities: map[string]model.CityState{
				"chicago": {CityID: "chicago", PriceMultiplier: 1.1},
				"miami":   {CityID: "miami", PriceMultiplier: 1.4},
			},
		}

		convey.Convey("When cloning it", func() {
			clone := snap.Clone()

			convey.Convey("Then the clone should carry the same contents", func() {
				convey.So(clone.Tick, convey.ShouldEqual, snap.Tick)
				convey.So(clone.Cities, convey.ShouldHaveLength, 2)
				convey.So(clone.Cities["miami"].PriceMultiplier, convey.ShouldEqual, 1.4)
			})

			convey.Convey("And mutating the clone should not affect the original", func() {
				clone.Cities["chicago"] = model.CityState{CityID: "chicago", PriceMultiplier: 9.9}
				convey.So(snap.Cities["chicago"].PriceMultiplier, convey.ShouldEqual, 1.1)
			})
		})
	})
}

func TestMetricOverrides(t *testing.T) {
	convey.Convey("Given metric overrides", t, func() {
		convey.Convey("When no field is forced", func() {
			o := model.MetricOverrides{}

			convey.Convey("Then it should report empty and no fields", func() {
				convey.So(o.IsEmpty(), convey.ShouldBeTrue)
				convey.So(o.Fields(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When only demand is forced", func() {
			demand := 10
			o := model.MetricOverrides{DemandLevel: &demand}

			convey.Convey("Then it should list a single field", func() {
				convey.So(o.IsEmpty(), convey.ShouldBeFalse)
				convey.So(o.Fields(), convey.ShouldResemble, []string{"demand_level"})
			})
		})

		convey.Convey("When all three fields are forced", func() {
			fuel := 2.50
			congestion := 10
			demand := 10
			o := model.MetricOverrides{
				FuelPrice:       &fuel,
				CongestionIndex: &congestion,
				DemandLevel:     &demand,
			}

			convey.Convey("Then it should list them in a stable order", func() {
				convey.So(o.Fields(), convey.ShouldResemble, []string{"fuel_price", "congestion_index", "demand_level"})
			})
		})
	})
}

func TestScenarioOverrideExpiry(t *testing.T) {
	convey.Convey("Given a scenario override expiring at t0", t, func() {
		t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		fuel := 2.50
		override := model.ScenarioOverride{
			CityID:    "houston",
			Overrides: model.MetricOverrides{FuelPrice: &fuel},
			ExpiresAt: t0,
		}

		convey.Convey("When checked before t0", func() {
			convey.So(override.ExpiredAt(t0.Add(-time.Second)), convey.ShouldBeFalse)
		})

		convey.Convey("When checked exactly at t0", func() {
			// Expiry is inclusive: now >= expires_at means no longer in force.
			convey.So(override.ExpiredAt(t0), convey.ShouldBeTrue)
		})

		convey.Convey("When checked after t0", func() {
			convey.So(override.ExpiredAt(t0.Add(time.Second)), convey.ShouldBeTrue)
		})
	})
}
