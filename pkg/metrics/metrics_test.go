package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording tick metrics", func() {
			Convey("Then it should record completed ticks", func() {
				So(func() {
					RecordTickCompleted()
					RecordTickCompleted()
				}, ShouldNotPanic)
			})

			Convey("And it should record tick durations", func() {
				So(func() {
					RecordTickDuration(120.0)
					RecordTickDuration(95.5)
				}, ShouldNotPanic)
			})

			Convey("And it should record published snapshots", func() {
				So(func() {
					RecordSnapshotPublished()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording scoring metrics", func() {
			Convey("Then it should record scoring latency", func() {
				So(func() {
					RecordScoringLatency(100.0)
					RecordScoringLatency(150.0)
				}, ShouldNotPanic)
			})

			Convey("And it should record scoring errors and fallbacks", func() {
				So(func() {
					RecordScoringError()
					RecordScoringFallback()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording scenario metrics", func() {
			Convey("Then it should record the override lifecycle", func() {
				So(func() {
					RecordScenarioApplied()
					RecordScenarioRejected()
					RecordScenarioExpired()
					UpdateOverridesActive(2)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording history metrics", func() {
			Convey("Then it should record buffer state", func() {
				So(func() {
					UpdateHistorySize(42)
					UpdateHistoryCapacity(100)
					RecordHistoryAppend()
					RecordHistoryEviction()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording broadcast metrics", func() {
			Convey("Then it should record hub activity", func() {
				So(func() {
					UpdateHubSubscribers(3)
					RecordHubConnect()
					RecordHubDisconnect()
					RecordHubDelivery()
					RecordHubDroppedClient()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record requests and durations", func() {
				So(func() {
					RecordHTTPRequest("snapshot", "GET", "200")
					RecordHTTPRequestDuration("snapshot", "GET", "200", 12.5)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording error metrics", func() {
			Convey("Then it should record labeled errors", func() {
				So(func() {
					RecordErrorByComponent("scheduler", "scoring_error")
					RecordErrorByType("scoring_error", "high")
					RecordErrorByEndpoint("scenario", "POST", "client_error")
					RecordErrorLatency("http", "client_error", 3.2)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording system metrics", func() {
			Convey("Then it should record process state", func() {
				So(func() {
					UpdateSystemMemoryUsage(1024 * 1024)
					UpdateSystemGoroutineCount(25)
					RecordSystemGCPauseTime(1.5)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the metrics package", t, func() {
		Convey("When getting the registry", func() {
			registry := GetRegistry()

			Convey("Then it should not be nil", func() {
				So(registry, ShouldNotBeNil)
			})
		})
	})
}
