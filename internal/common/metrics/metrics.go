// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rcm_reports_generated_total",
			Help: "Total number of benchmark reports generated",
		},
		[]string{"origin"},
	)

	ComputeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rcm_compute_failures_total",
			Help: "Total number of metric computations that failed",
		},
		[]string{"error_code"},
	)

	HospitalLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rcm_hospital_lookups_total",
			Help: "Hospital registry lookups by outcome",
		},
		[]string{"outcome"},
	)

	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rcm_deliveries_total",
			Help: "Notification deliveries by channel and status",
		},
		[]string{"channel", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rcm_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)

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
)
