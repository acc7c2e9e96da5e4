package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registerOnce          sync.Once
	registry              *prometheus.Registry
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	enrollmentTransitions *prometheus.CounterVec
	accessDecisionsTotal  *prometheus.CounterVec
	uploadRequestsTotal   *prometheus.CounterVec
	uploadRejectedTotal   *prometheus.CounterVec
	uploadLatencySeconds  prometheus.Histogram
	eventsPublishedTotal  *prometheus.CounterVec
	eventsFailedTotal     *prometheus.CounterVec
	streamClientsActive   prometheus.Gauge
	rankingCacheLookups   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		registry = prometheus.NewRegistry()

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		enrollmentTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_transitions_total",
			Help: "Enrollment state machine operations by kind and result.",
		}, []string{"operation", "result"})

		accessDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_access_decisions_total",
			Help: "Document access gate decisions by outcome.",
		}, []string{"outcome"})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "document_uploads_total",
			Help: "Stored document uploads by MIME type.",
		}, []string{"mime"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "document_uploads_rejected_total",
			Help: "Rejected document uploads by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "document_upload_duration_seconds",
			Help:    "Time spent validating and storing document uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_events_published_total",
			Help: "Enrollment events delivered per sink.",
		}, []string{"sink", "type"})

		eventsFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_events_failed_total",
			Help: "Enrollment events a sink failed to deliver.",
		}, []string{"sink", "type"})

		streamClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stream_clients_active",
			Help: "Currently connected WebSocket stream clients.",
		})

		rankingCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ranking_cache_lookups_total",
			Help: "Tutor ranking cache lookups by result.",
		}, []string{"result"})

		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			enrollmentTransitions,
			accessDecisionsTotal,
			uploadRequestsTotal,
			uploadRejectedTotal,
			uploadLatencySeconds,
			eventsPublishedTotal,
			eventsFailedTotal,
			streamClientsActive,
			rankingCacheLookups,
		)
	})
}

// Registry returns the registry holding the platform collectors.
func Registry() *prometheus.Registry {
	RegisterMetrics()
	return registry
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// EnrollmentTransitions counts state machine operations.
func EnrollmentTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return enrollmentTransitions
}

// AccessDecisions counts access gate outcomes.
func AccessDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return accessDecisionsTotal
}

// UploadRequests counts stored uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected counts rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency observes upload handling time.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// EventsPublished counts delivered enrollment events.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// EventsFailed counts failed enrollment event deliveries.
func EventsFailed() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsFailedTotal
}

// StreamClientsActive tracks connected stream clients.
func StreamClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return streamClientsActive
}

// RankingCacheLookups counts ranking cache hits and misses.
func RankingCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return rankingCacheLookups
}
