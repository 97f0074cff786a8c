package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts served requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syncdraft_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration records request latency by method and route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "syncdraft_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AuthEventsTotal counts signup, login and refresh attempts by outcome.
	AuthEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syncdraft_auth_events_total",
		Help: "Authentication attempts by kind and outcome",
	}, []string{"kind", "outcome"})

	// AICacheLookups counts AI result cache hits and misses.
	AICacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syncdraft_ai_cache_lookups_total",
		Help: "AI result cache lookups by result",
	}, []string{"result"})

	// AIUpstreamErrors counts failed calls to the AI provider.
	AIUpstreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "syncdraft_ai_upstream_errors_total",
		Help: "Failed AI provider calls",
	})
)

// Outcome turns a success flag into a metric label.
func Outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
