// Package metrics provides Prometheus metrics for the surgecast feed service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the surgecast service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - What really matters for a pricing feed
	ticksCompleted     prometheus.Counter
	tickDuration       prometheus.Histogram
	snapshotsPublished prometheus.Counter
	scoringLatency     prometheus.Histogram
	scoringErrors      prometheus.Counter
	scoringFallbacks   prometheus.Counter

	// Scenario Metrics - Override lifecycle
	scenariosApplied  prometheus.Counter
	scenariosRejected prometheus.Counter
	scenariosExpired  prometheus.Counter
	overridesActive   prometheus.Gauge

	// History Metrics - Ring buffer state
	historySize      prometheus.Gauge
	historyCapacity  prometheus.Gauge
	historyAppends   prometheus.Counter
	historyEvictions prometheus.Counter

	// Broadcast Metrics - Hub fan-out performance
	hubSubscribers    prometheus.Gauge
	hubConnects       prometheus.Counter
	hubDisconnects    prometheus.Counter
	hubDeliveries     prometheus.Counter
	hubDroppedClients prometheus.Counter

	// Store Metrics - Current state size
	storeCities prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "surgecast",
		subsystem:        "feed",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics - Focus on what drives the feed
	m.ticksCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ticks_completed_total",
		Help:      "Total number of simulation ticks completed",
	})

	m.tickDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_duration_milliseconds",
		Help:      "Histogram of full tick duration in milliseconds (all cities scored and published)",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotsPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshots_published_total",
		Help:      "Total number of full snapshots handed to the broadcast hub",
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of per-city scoring latency in milliseconds (core performance metric)",
		Buckets:   m.histogramBuckets,
	})

	m.scoringErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of scoring failures (timeouts, process errors, malformed output)",
	})

	m.scoringFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_fallbacks_total",
		Help:      "Total number of multipliers computed by the deterministic fallback formula",
	})

	// Scenario Metrics - Override lifecycle
	m.scenariosApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scenarios_applied_total",
		Help:      "Total number of scenario overrides accepted",
	})

	m.scenariosRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scenarios_rejected_total",
		Help:      "Total number of scenario overrides rejected at validation",
	})

	m.scenariosExpired = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scenarios_expired_total",
		Help:      "Total number of scenario overrides swept after expiry",
	})

	m.overridesActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "overrides_active",
		Help:      "Current number of unexpired scenario overrides",
	})

	// History Metrics - Ring buffer state
	m.historySize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_size",
		Help:      "Current number of records held in the history buffer",
	})

	m.historyCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_capacity",
		Help:      "Fixed capacity of the history buffer",
	})

	m.historyAppends = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_appends_total",
		Help:      "Total number of records appended to history",
	})

	m.historyEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_evictions_total",
		Help:      "Total number of oldest records evicted from history (normal FIFO operation)",
	})

	// Broadcast Metrics - Hub fan-out performance
	m.hubSubscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hub_subscribers",
		Help:      "Current number of connected subscribers",
	})

	m.hubConnects = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hub_connects_total",
		Help:      "Total number of subscriber connections",
	})

	m.hubDisconnects = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hub_disconnects_total",
		Help:      "Total number of subscriber disconnections",
	})

	m.hubDeliveries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hub_deliveries_total",
		Help:      "Total number of snapshot deliveries to subscribers",
	})

	m.hubDroppedClients = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hub_dropped_clients_total",
		Help:      "Total number of subscribers disconnected for failing to keep up",
	})

	// Store Metrics - Current state size
	m.storeCities = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_cities",
		Help:      "Number of cities with a current state in the store",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of operations that resulted in errors",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordTickCompleted increments the completed ticks counter.
func RecordTickCompleted() {
	globalManager.ticksCompleted.Inc()
}

// RecordTickDuration records a full tick duration in milliseconds.
func RecordTickDuration(durationMs float64) {
	globalManager.tickDuration.Observe(durationMs)
}

// RecordSnapshotPublished increments the published snapshots counter.
func RecordSnapshotPublished() {
	globalManager.snapshotsPublished.Inc()
}

// RecordScoringLatency records per-city scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordScoringFallback increments the fallback multiplier counter.
func RecordScoringFallback() {
	globalManager.scoringFallbacks.Inc()
}

// Scenario Metrics Functions.

// RecordScenarioApplied increments the accepted scenarios counter.
func RecordScenarioApplied() {
	globalManager.scenariosApplied.Inc()
}

// RecordScenarioRejected increments the rejected scenarios counter.
func RecordScenarioRejected() {
	globalManager.scenariosRejected.Inc()
}

// RecordScenarioExpired increments the expired scenarios counter.
func RecordScenarioExpired() {
	globalManager.scenariosExpired.Inc()
}

// UpdateOverridesActive sets the current number of unexpired overrides.
func UpdateOverridesActive(count int) {
	globalManager.overridesActive.Set(float64(count))
}

// History Metrics Functions.

// UpdateHistorySize sets the current history buffer size.
func UpdateHistorySize(size int) {
	globalManager.historySize.Set(float64(size))
}

// UpdateHistoryCapacity sets the fixed history buffer capacity.
func UpdateHistoryCapacity(capacity int) {
	globalManager.historyCapacity.Set(float64(capacity))
}

// RecordHistoryAppend increments the history appends counter.
func RecordHistoryAppend() {
	globalManager.historyAppends.Inc()
}

// RecordHistoryEviction increments the history evictions counter.
func RecordHistoryEviction() {
	globalManager.historyEvictions.Inc()
}

// Broadcast Metrics Functions.

// UpdateHubSubscribers sets the current subscriber count.
func UpdateHubSubscribers(count int) {
	globalManager.hubSubscribers.Set(float64(count))
}

// RecordHubConnect increments the subscriber connections counter.
func RecordHubConnect() {
	globalManager.hubConnects.Inc()
}

// RecordHubDisconnect increments the subscriber disconnections counter.
func RecordHubDisconnect() {
	globalManager.hubDisconnects.Inc()
}

// RecordHubDelivery increments the snapshot deliveries counter.
func RecordHubDelivery() {
	globalManager.hubDeliveries.Inc()
}

// RecordHubDroppedClient increments the dropped subscribers counter.
func RecordHubDroppedClient() {
	globalManager.hubDroppedClients.Inc()
}

// Store Metrics Functions.

// UpdateStoreCities sets the number of cities with a current state.
func UpdateStoreCities(count int) {
	globalManager.storeCities.Set(float64(count))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
