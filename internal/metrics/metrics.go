// Package metrics collects execution-core counters on a module-owned
// registry. No exposition endpoint lives here; the embedding process decides
// whether and where to serve the registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is handed through construction to every component that counts.
type Metrics struct {
	Registry *prometheus.Registry

	OrdersSubmitted *prometheus.CounterVec
	OrdersRejected  *prometheus.CounterVec
	OrdersErrored   prometheus.Counter
	RetryAttempts   prometheus.Counter
	RateLimitWaits  prometheus.Counter
	BreakerTrips    *prometheus.CounterVec
	CertaintyScore  prometheus.Histogram
}

// New builds and registers the full metric set.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		OrdersSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marlin_orders_submitted_total",
				Help: "Orders acknowledged by the broker",
			},
			[]string{"symbol"},
		),
		OrdersRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marlin_orders_rejected_total",
				Help: "Orders denied by policy before reaching the broker",
			},
			[]string{"reason"},
		),
		OrdersErrored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "marlin_orders_errored_total",
				Help: "Submissions that failed after the retry budget",
			},
		),
		RetryAttempts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "marlin_retry_attempts_total",
				Help: "Broker call attempts beyond the first",
			},
		),
		RateLimitWaits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "marlin_rate_limit_waits_total",
				Help: "Times a submission had to wait for a rate-limit token",
			},
		),
		BreakerTrips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marlin_breaker_trips_total",
				Help: "Circuit breaker vetoes by reason",
			},
			[]string{"reason"},
		),
		CertaintyScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "marlin_certainty_score",
				Help:    "Certainty scores of evaluated candidates",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
	}
	m.Registry.MustRegister(
		m.OrdersSubmitted,
		m.OrdersRejected,
		m.OrdersErrored,
		m.RetryAttempts,
		m.RateLimitWaits,
		m.BreakerTrips,
		m.CertaintyScore,
	)
	return m
}
