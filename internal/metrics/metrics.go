package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RetryAttempts counts every call made through the backoff executor.
	// outcome: ok, retry, exhausted, fatal
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadhunt_retry_attempts_total",
			Help: "Outbound call attempts made by the backoff executor",
		},
		[]string{"source", "outcome"},
	)

	// CacheLookups counts response cache hits and misses per adapter.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadhunt_cache_lookups_total",
			Help: "Response cache lookups",
		},
		[]string{"source", "result"},
	)

	// SourceRecords counts raw records returned by each adapter.
	SourceRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadhunt_source_records_total",
			Help: "Records fetched per source",
		},
		[]string{"source"},
	)

	// PersistResults counts per-record persistence outcomes.
	// result: added, updated, failed, rejected
	PersistResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadhunt_persist_results_total",
			Help: "Per-record pipeline outcomes",
		},
		[]string{"workflow", "result"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadhunt_run_duration_seconds",
			Help:    "Wall time of a pipeline run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"workflow"},
	)
)
