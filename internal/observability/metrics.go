package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	recordCacheRequests    *prometheus.CounterVec
	recordMutationsTotal   *prometheus.CounterVec
	activationRetriesTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		recordCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "record_cache_requests_total",
			Help: "Repository cache lookups by entity and result (hit, miss, error).",
		}, []string{"entity", "result"})

		recordMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "record_mutations_total",
			Help: "Completed record mutations by entity and operation.",
		}, []string{"entity", "op"})

		activationRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "event_activation_retries_total",
			Help: "Event creations retried after losing the single-active race.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			recordCacheRequests,
			recordMutationsTotal,
			activationRetriesTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// RecordCacheRequests exposes the repository cache counter.
func RecordCacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return recordCacheRequests
}

// RecordMutations exposes the mutation counter.
func RecordMutations() *prometheus.CounterVec {
	RegisterMetrics()
	return recordMutationsTotal
}

// ActivationRetries exposes the single-active retry counter.
func ActivationRetries() prometheus.Counter {
	RegisterMetrics()
	return activationRetriesTotal
}
