package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskdeck"

var (
	syncDurationBuckets = []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600}

	SyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_duration_seconds",
		Help:      "Time taken for a provider sync to complete.",
		Buckets:   syncDurationBuckets,
	}, []string{"provider"})

	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_runs_total",
		Help:      "Count of sync executions.",
	}, []string{"provider", "status"})

	SyncLastSuccessTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sync_last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful sync.",
	}, []string{"provider"})

	ItemsSynced = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "items_synced",
		Help:      "Items processed by the most recent successful sync.",
	}, []string{"provider"})

	ConnectAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connect_attempts_total",
		Help:      "Count of connection attempts.",
	}, []string{"provider", "status"})
)
