// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ProductsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_products_created_total",
			Help: "Products created, by the storage representation chosen",
		},
		[]string{"strategy"},
	)

	EmbeddedListFull = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_embedded_list_full_total",
			Help: "Embedded appends rejected because the list reached its limit",
		},
	)

	EmbeddedFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_embedded_fallback_total",
			Help: "Mutations that missed the separated store and fell back to the embedded list",
		},
		[]string{"operation", "outcome"},
	)

	LocationIndexLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_location_index_lookups_total",
			Help: "Reverse product lookups answered by the location index",
		},
		[]string{"result"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_storage_operation_duration_seconds",
			Help:    "Latency of storage gateway calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_http_requests_total",
			Help: "HTTP requests served, by route and status",
		},
		[]string{"method", "route", "status"},
	)
)
