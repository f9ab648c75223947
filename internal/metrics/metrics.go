package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskscan_scans_total",
			Help: "Completed scans by verdict",
		},
		[]string{"status"},
	)

	PollAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "riskscan_poll_attempts",
			Help:    "Result fetches issued per scan job",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	CheckFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskscan_check_failures_total",
			Help: "Failed checks by stage",
		},
		[]string{"stage"},
	)

	HistoryWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riskscan_history_write_failures_total",
			Help: "Scan history writes that failed and were dropped",
		},
	)
)
