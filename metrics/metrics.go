package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_upstream_requests_total",
			Help: "Upstream requests by service and HTTP status (0 on transport failure).",
		},
		[]string{"service", "status"},
	)

	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherdash_upstream_request_duration_seconds",
			Help:    "Upstream request latency by service.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	Transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_transitions_total",
			Help: "Dashboard state transitions by resulting state.",
		},
		[]string{"state"},
	)

	StaleResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_stale_results_total",
			Help: "Fetch results discarded because a newer action superseded them.",
		},
		[]string{"kind"},
	)

	Sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weatherdash_sessions",
			Help: "Live dashboard sessions.",
		},
	)

	Requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdash_http_requests_total",
			Help: "Dashboard HTTP requests by route and method.",
		},
		[]string{"route", "method"},
	)
)

func init() {
	prometheus.MustRegister(UpstreamRequests, UpstreamDuration, Transitions, StaleResults, Sessions, Requests)
}

// ObserveUpstream records one finished upstream request.
func ObserveUpstream(service string, status int, elapsed time.Duration) {
	UpstreamRequests.WithLabelValues(service, strconv.Itoa(status)).Inc()
	UpstreamDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
