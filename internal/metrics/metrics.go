package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttemptsTotal tracks session attempts by classified outcome
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotauth_attempts_total",
			Help: "Total login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// LoginsTotal tracks terminal results per logical login request
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotauth_logins_total",
			Help: "Total logical login requests by terminal status",
		},
		[]string{"status"},
	)

	// AttemptDuration tracks per-attempt latency
	AttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rotauth_attempt_duration_seconds",
			Help:    "Attempt latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// AcquireTotal tracks pool acquisitions by result
	AcquireTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotauth_pool_acquire_total",
			Help: "Total pool acquire calls by result",
		},
		[]string{"result"},
	)

	// PoolSize tracks the number of loaded resources
	PoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rotauth_pool_size",
			Help: "Number of resources loaded into the pool",
		},
	)

	// PoolAvailable tracks currently selectable resources
	PoolAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rotauth_pool_available",
			Help: "Number of resources currently outside their cooldown window",
		},
	)

	// StoreErrors tracks persistence failures (pool degrades to memory-only)
	StoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rotauth_store_errors_total",
			Help: "Total stats persistence failures",
		},
	)
)
