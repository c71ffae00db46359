package ratelimit

import "github.com/prometheus/client_golang/prometheus"

var (
	acquiredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starwatch_ratelimit_acquired_total",
		Help: "Permits granted, per limiter",
	}, []string{"limiter"})

	waitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starwatch_ratelimit_waits_total",
		Help: "Times a caller had to wait for window room, per limiter",
	}, []string{"limiter"})

	waitSecondsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starwatch_ratelimit_wait_seconds_total",
		Help: "Cumulative seconds spent waiting for window room, per limiter",
	}, []string{"limiter"})
)

func init() {
	prometheus.MustRegister(acquiredTotal, waitsTotal, waitSecondsTotal)
}
