package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for paddock
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Upstream Metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Ingestion Metrics
	SyncRunsTotal        *prometheus.CounterVec
	SyncSkippedTotal     *prometheus.CounterVec
	SyncJobDuration      *prometheus.HistogramVec
	PositionsInserted    prometheus.Counter
	PositionsDiscarded   *prometheus.CounterVec
	LastSuccessfulSyncTS prometheus.Gauge
}

// NewMetricsRegistry registers every metric on reg. Pass
// prometheus.DefaultRegisterer in the server and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	f := promauto.With(reg)

	return &MetricsRegistry{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paddock_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paddock_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "paddock_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		UpstreamRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paddock_upstream_requests_total",
				Help: "Telemetry API requests by resource and outcome",
			},
			[]string{"resource", "outcome"},
		),
		UpstreamRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paddock_upstream_request_duration_seconds",
				Help:    "Telemetry API request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"resource"},
		),

		CacheHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paddock_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paddock_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		SyncRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paddock_sync_runs_total",
				Help: "Completed sync cycles by job and result",
			},
			[]string{"job_name", "result"},
		),
		SyncSkippedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paddock_sync_skipped_total",
				Help: "Ticks skipped because the previous cycle was still running",
			},
			[]string{"job_name"},
		),
		SyncJobDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paddock_sync_job_duration_seconds",
				Help:    "Sync job execution time in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"job_name"},
		),
		PositionsInserted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "paddock_positions_inserted_total",
				Help: "Position history rows appended",
			},
		),
		PositionsDiscarded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paddock_positions_discarded_total",
				Help: "Raw position records dropped before insertion, by reason",
			},
			[]string{"reason"},
		),
		LastSuccessfulSyncTS: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "paddock_last_successful_sync_timestamp_seconds",
				Help: "Unix time of the last sync cycle that completed without error",
			},
		),
	}
}
