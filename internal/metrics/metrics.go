// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// HTTPRequests counts handled requests by route template and status.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panel",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "panel",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LifecycleTransitions counts committed test transitions.
	LifecycleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panel",
		Name:      "test_transitions_total",
		Help:      "Committed test lifecycle transitions by target state.",
	}, []string{"transition"})

	// MediaUploads counts per-file upload outcomes.
	MediaUploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panel",
		Name:      "media_uploads_total",
		Help:      "Feedback media uploads by result.",
	}, []string{"result"})

	// LoginAttempts counts admin login outcomes.
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "panel",
		Name:      "login_attempts_total",
		Help:      "Admin login attempts by result.",
	}, []string{"result"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		LifecycleTransitions,
		MediaUploads,
		LoginAttempts,
	)
}

// Registry returns the registry holding every panel collector.
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
