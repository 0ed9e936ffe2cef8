// Package metrics provides Prometheus metrics for the tally scoring service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every metric the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels      map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion
	eventsIngested  prometheus.Counter
	eventsProcessed prometheus.Counter
	eventsDuplicate prometheus.Counter
	eventsRejected  *prometheus.CounterVec

	// Scoring and reports
	compositeLatency  prometheus.Histogram
	boardLatency      prometheus.Histogram
	boardStaff        prometheus.Gauge
	attendanceReports prometheus.Counter
	leaderboardQuery  *prometheus.CounterVec

	// Repository
	repositoryRecords      prometheus.Gauge
	repositoryUpdateMillis prometheus.Histogram
	repositoryQueryMillis  prometheus.Histogram

	// Queue
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueEnqueued prometheus.Counter
	queueDequeued prometheus.Counter
	queueRejected *prometheus.CounterVec

	// Workers
	workerActive     prometheus.Gauge
	workerRate       prometheus.Gauge
	workerLatency    prometheus.Histogram
	workerErrorCount prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
	systemGCPause    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level recorders

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegisterer(customRegistry))
}

// NewManager creates a Manager and registers its metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tally",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	if !m.enabled {
		// Metrics still work but are never exported.
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval is how often gauges sampled by the caller should be updated.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RefreshInterval returns the sampling interval of the global manager.
func RefreshInterval() time.Duration { return globalManager.RefreshInterval() }

func (m *Manager) name(n string) string { return m.metricPrefix + n }

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.constLabels, Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.eventsIngested = auto.NewCounter(m.counterOpts("events_ingested_total", "Score events accepted onto the ingestion queue"))
	m.eventsProcessed = auto.NewCounter(m.counterOpts("events_processed_total", "Score events validated and stored by workers"))
	m.eventsDuplicate = auto.NewCounter(m.counterOpts("events_duplicate_total", "Score events dropped as duplicates"))
	m.eventsRejected = auto.NewCounterVec(m.counterOpts("events_rejected_total", "Score events rejected by catalog validation"), []string{"reason"})

	m.compositeLatency = auto.NewHistogram(m.histogramOpts("composite_latency_milliseconds", "Composite score computation latency", nil))
	m.boardLatency = auto.NewHistogram(m.histogramOpts("composite_board_latency_milliseconds", "Latency of computing the composite board", nil))
	m.boardStaff = auto.NewGauge(m.gaugeOpts("composite_board_staff", "Staff members on the last composite board"))
	m.attendanceReports = auto.NewCounter(m.counterOpts("attendance_summaries_total", "Attendance month-over-month summaries produced"))
	m.leaderboardQuery = auto.NewCounterVec(m.counterOpts("leaderboard_queries_total", "Leaderboard queries by metric"), []string{"metric"})

	m.repositoryRecords = auto.NewGauge(m.gaugeOpts("repository_score_events", "Score events held by the repository"))
	m.repositoryUpdateMillis = auto.NewHistogram(m.histogramOpts("repository_update_latency_milliseconds", "Repository write latency", nil))
	m.repositoryQueryMillis = auto.NewHistogram(m.histogramOpts("repository_query_latency_milliseconds", "Repository read latency", nil))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Score events waiting in the ingestion queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Ingestion queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Events enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Events dequeued"))
	m.queueRejected = auto.NewCounterVec(m.counterOpts("queue_rejected_total", "Enqueue attempts refused"), []string{"reason"})

	m.workerActive = auto.NewGauge(m.gaugeOpts("worker_active_count", "Running ingestion workers"))
	m.workerRate = auto.NewGauge(m.gaugeOpts("worker_messages_per_second", "Events stored per second across workers"))
	m.workerLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Per-event worker processing latency", nil))
	m.workerErrorCount = auto.NewCounter(m.counterOpts("worker_errors_total", "Worker storage failures"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration", nil), []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})

	m.systemMemory = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutines = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPause = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Handler serves the custom registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{Registry: customRegistry})
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
