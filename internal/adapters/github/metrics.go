package github

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starwatch_github_requests_total",
		Help: "Upstream requests attempted, per resource and status code",
	}, []string{"resource", "status"})

	cacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starwatch_github_cache_hits_total",
		Help: "GET payloads served from the response cache, per resource",
	}, []string{"resource"})

	retriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "starwatch_github_retries_total",
		Help: "Retry sleeps taken, per resource and reason",
	}, []string{"resource", "reason"})
)

func init() {
	prometheus.MustRegister(requestsTotal, cacheHitsTotal, retriesTotal)
}

func observeStatus(resource string, status int) {
	requestsTotal.WithLabelValues(resource, strconv.Itoa(status)).Inc()
}
