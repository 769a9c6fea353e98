package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// Cart and catalog
	CartOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Committed cart mutations",
		},
		[]string{"op"}, // add|remove|set|clear|prune
	)
	RatingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "product_ratings_total",
			Help: "Committed product ratings",
		},
	)
	CommitConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_commit_conflicts_total",
			Help: "Versioned writes retried after losing a race",
		},
		[]string{"entity"}, // cart|product
	)
	ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_import_rows_total",
			Help: "Rows processed by the catalog importer",
		},
		[]string{"result"}, // imported|failed
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
	WorkerJobsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Background jobs that returned an error",
		},
		[]string{"job"},
	)

	initOnce sync.Once
)

var Handler = promhttp.Handler

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			RateLimited,
			CartOpsTotal,
			RatingsTotal,
			CommitConflicts,
			ImportRows,
			WorkerQueueDepth,
			WorkerJobsFailed,
		)
	})
}
