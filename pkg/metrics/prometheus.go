// Package metrics provides Prometheus metrics for the flowfit service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Survey intake
	submissions          prometheus.Counter
	submissionsDuplicate prometheus.Counter
	validationErrors     *prometheus.CounterVec
	observationsByZone   *prometheus.CounterVec

	// Team analysis
	teamCRI         prometheus.Gauge
	teamRespondents prometheus.Gauge

	// Background refresh
	queueSize       prometheus.Gauge
	queueDropped    prometheus.Counter
	refreshDuration *prometheus.HistogramVec

	// Latency
	composeDuration    *prometheus.HistogramVec
	storeQueryDuration *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "flowfit",
		subsystem:        "survey",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.submissions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "submissions_total",
		Help:        "Total number of stored survey submissions",
		ConstLabels: m.constLabels,
	})

	m.submissionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "submissions_duplicate_total",
		Help:        "Total number of submissions rejected as duplicates",
		ConstLabels: m.constLabels,
	})

	m.validationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "validation_errors_total",
		Help:        "Rejected inputs by error kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.observationsByZone = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "observations_by_zone_total",
		Help:        "Classified ratings by zone",
		ConstLabels: m.constLabels,
	}, []string{"zone"})

	m.teamCRI = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "team_change_readiness_index",
		Help:        "Change-readiness index of the last team analysis over stored submissions",
		ConstLabels: m.constLabels,
	})

	m.teamRespondents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "team_respondents",
		Help:        "Respondents included in the last team analysis over stored submissions",
		ConstLabels: m.constLabels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "event_queue_size",
		Help:        "Submission events waiting for the team worker",
		ConstLabels: m.constLabels,
	})

	m.queueDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "event_queue_dropped_total",
		Help:        "Submission events dropped because the queue was full or closed",
		ConstLabels: m.constLabels,
	})

	m.refreshDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "team_refresh_duration_milliseconds",
		Help:        "Background team refresh latency by result",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.composeDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "report_compose_duration_milliseconds",
		Help:        "Report composition latency by report kind",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.storeQueryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_query_duration_milliseconds",
		Help:        "Submission store latency by operation",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordSubmission increments the stored submissions counter.
func RecordSubmission() {
	globalManager.submissions.Inc()
}

// RecordDuplicateSubmission increments the duplicate submissions counter.
func RecordDuplicateSubmission() {
	globalManager.submissionsDuplicate.Inc()
}

// RecordValidationError counts a rejected input of the given kind.
func RecordValidationError(kind string) {
	globalManager.validationErrors.WithLabelValues(kind).Inc()
}

// RecordZone counts one classified observation.
func RecordZone(zone string) {
	globalManager.observationsByZone.WithLabelValues(zone).Inc()
}

// UpdateTeam publishes the outcome of the latest stored-team analysis.
func UpdateTeam(cri float64, respondents int) {
	globalManager.teamCRI.Set(cri)
	globalManager.teamRespondents.Set(float64(respondents))
}

// UpdateQueueSize publishes the number of buffered submission events.
func UpdateQueueSize(n int) {
	globalManager.queueSize.Set(float64(n))
}

// RecordQueueDropped counts a submission event that could not be queued.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// RecordRefresh records a background team refresh.
func RecordRefresh(latencyMs float64, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	globalManager.refreshDuration.WithLabelValues(result).Observe(latencyMs)
}

// RecordComposeLatency records report composition latency in milliseconds.
func RecordComposeLatency(kind string, latencyMs float64) {
	globalManager.composeDuration.WithLabelValues(kind).Observe(latencyMs)
}

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeQueryDuration.WithLabelValues(op).Observe(latencyMs)
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
