// Package metrics provides Prometheus metrics for the classroom points service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ledger metrics
	registrations         prometheus.Counter
	registrationsRejected *prometheus.CounterVec
	activitiesRecorded    *prometheus.CounterVec
	pointsAwarded         prometheus.Counter
	goalsReached          prometheus.Counter
	duplicateAwards       prometheus.Counter

	// Roster gauges
	participantsTotal prometheus.Gauge
	projectsTotal     prometheus.Gauge

	// Persistence
	persistenceOps     *prometheus.CounterVec
	persistenceErrors  *prometheus.CounterVec
	persistenceLatency *prometheus.HistogramVec

	// Advice (text generation)
	adviceRequests  *prometheus.CounterVec
	adviceFallbacks *prometheus.CounterVec
	adviceLatency   *prometheus.HistogramVec

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerErrors       prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "engcomp",
		subsystem:        "ledger",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.registrations = auto.NewCounter(m.counterOpts("registrations_total",
		"Total number of participants registered"))
	m.registrationsRejected = auto.NewCounterVec(m.counterOpts("registrations_rejected_total",
		"Registrations rejected by reason"), []string{"reason"})
	m.activitiesRecorded = auto.NewCounterVec(m.counterOpts("activities_recorded_total",
		"Activities recorded by kind"), []string{"kind"})
	m.pointsAwarded = auto.NewCounter(m.counterOpts("points_awarded_total",
		"Total points awarded across all participants"))
	m.goalsReached = auto.NewCounter(m.counterOpts("goals_reached_total",
		"Participants that crossed the goal threshold"))
	m.duplicateAwards = auto.NewCounter(m.counterOpts("duplicate_awards_total",
		"Award requests answered from the idempotency cache"))

	m.participantsTotal = auto.NewGauge(m.gaugeOpts("participants",
		"Current number of participants in the roster"))
	m.projectsTotal = auto.NewGauge(m.gaugeOpts("projects",
		"Current number of project artifacts in the roster"))

	m.persistenceOps = auto.NewCounterVec(m.counterOpts("persistence_operations_total",
		"Roster load/save operations"), []string{"op"})
	m.persistenceErrors = auto.NewCounterVec(m.counterOpts("persistence_errors_total",
		"Roster load/save failures by operation and reason"), []string{"op", "reason"})
	m.persistenceLatency = auto.NewHistogramVec(m.histogramOpts("persistence_latency_milliseconds",
		"Roster load/save latency in milliseconds"), []string{"op"})

	m.adviceRequests = auto.NewCounterVec(m.counterOpts("advice_requests_total",
		"Text generation requests by kind"), []string{"kind"})
	m.adviceFallbacks = auto.NewCounterVec(m.counterOpts("advice_fallbacks_total",
		"Text generation requests answered with fallback text"), []string{"kind"})
	m.adviceLatency = auto.NewHistogramVec(m.histogramOpts("advice_latency_milliseconds",
		"Text generation latency in milliseconds"), []string{"kind"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size",
		"Current number of pending advice requests"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity",
		"Maximum number of pending advice requests"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total",
		"Advice requests rejected by the queue"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count",
		"Number of advice workers"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total",
		"Advice worker failures"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})
}

// RecordRegistration increments the registrations counter.
func RecordRegistration() {
	globalManager.registrations.Inc()
}

// RecordRegistrationRejected counts a rejected registration.
func RecordRegistrationRejected(reason string) {
	globalManager.registrationsRejected.WithLabelValues(reason).Inc()
}

// RecordActivity counts a recorded activity and the points it awarded.
func RecordActivity(kind string, points int) {
	globalManager.activitiesRecorded.WithLabelValues(kind).Inc()
	globalManager.pointsAwarded.Add(float64(points))
}

// RecordGoalReached increments the goal transitions counter.
func RecordGoalReached() {
	globalManager.goalsReached.Inc()
}

// RecordDuplicateAward counts an award answered as a duplicate.
func RecordDuplicateAward() {
	globalManager.duplicateAwards.Inc()
}

// UpdateRosterSize sets the participant and project gauges.
func UpdateRosterSize(participants, projects int) {
	globalManager.participantsTotal.Set(float64(participants))
	globalManager.projectsTotal.Set(float64(projects))
}

// RecordPersistence records a load/save operation and its latency.
func RecordPersistence(op string, latencyMs float64) {
	globalManager.persistenceOps.WithLabelValues(op).Inc()
	globalManager.persistenceLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordPersistenceError records a failed or discarded load/save.
func RecordPersistenceError(op, reason string) {
	globalManager.persistenceErrors.WithLabelValues(op, reason).Inc()
}

// RecordAdvice records a text generation request outcome.
func RecordAdvice(kind string, fallback bool, latencyMs float64) {
	globalManager.adviceRequests.WithLabelValues(kind).Inc()
	if fallback {
		globalManager.adviceFallbacks.WithLabelValues(kind).Inc()
	}
	globalManager.adviceLatency.WithLabelValues(kind).Observe(latencyMs)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
