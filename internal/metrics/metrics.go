package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API side.
var (
	UploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "api_uploads_total",
		Help: "Total number of video uploads",
	})

	UploadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "api_upload_failures_total",
		Help: "Total number of failed uploads",
	})

	UploadDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "api_upload_duration_seconds",
		Help:    "Upload processing time",
		Buckets: prometheus.DefBuckets,
	})

	QueueMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "api_queue_messages_total",
		Help: "Total messages published to queue",
	})

	QueuePublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "api_queue_publish_failures_total",
		Help: "Failed queue message publishes",
	})
)

// Worker side.
var (
	JobsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_jobs_processed_total",
		Help: "Total number of jobs processed",
	})

	JobsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_jobs_failed_total",
		Help: "Total number of failed jobs",
	})

	JobsPoisonedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_jobs_poisoned_total",
		Help: "Total number of undecodable messages dropped without requeue",
	})

	ProcessingTimeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "worker_processing_time_seconds",
		Help:    "Job processing time",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 14), // 100ms to ~13m
	})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_active_jobs",
		Help: "Number of currently active jobs",
	})

	QueueReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "worker_queue_reconnects_total",
		Help: "Times the consumer re-established its broker subscription",
	})
)
