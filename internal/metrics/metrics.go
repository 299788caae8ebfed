package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds the request-path Prometheus metrics. Everything
// registers on the default registerer and is served by promhttp.
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec
}

// Service- and worker-side metrics live at package level so the pool and
// the services do not need the registry threaded through them.
var (
	RecordsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotelpulse_records_ingested_total",
			Help: "Canonical records written by outcome (inserted, updated, skipped)",
		},
		[]string{"outcome"},
	)
	IngestBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotelpulse_ingest_batches_total",
			Help: "Ingest batches by final result (completed, rejected, failed)",
		},
		[]string{"result"},
	)
	TaskTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotelpulse_task_transitions_total",
			Help: "Async task state transitions by target status",
		},
		[]string{"task_type", "status"},
	)
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotelpulse_aggregation_duration_seconds",
			Help:    "Aggregation query execution time in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"query"},
	)
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotelpulse_cache_hits_total",
			Help: "Total cache hits by cache key pattern",
		},
		[]string{"cache_key_pattern"},
	)
	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotelpulse_cache_misses_total",
			Help: "Total cache misses by cache key pattern",
		},
		[]string{"cache_key_pattern"},
	)
	WorkerJobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotelpulse_worker_jobs_in_flight",
			Help: "Background jobs currently executing on the worker pool",
		},
	)
	WorkerJobPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotelpulse_worker_job_panics_total",
			Help: "Background jobs that panicked and were recovered",
		},
	)
	TasksReapedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotelpulse_tasks_reaped_total",
			Help: "Stuck processing tasks failed by the reaper job",
		},
	)
)

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hotelpulse_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hotelpulse_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hotelpulse_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),
	}
}
