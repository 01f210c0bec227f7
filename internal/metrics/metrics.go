// Package metrics holds the Prometheus collectors for the quote pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// FetchAttempts counts single upstream requests by outcome
	// ("ok", "network", "http_status", ...).
	FetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldrate_upstream_requests_total",
			Help: "Upstream quote requests by outcome.",
		},
		[]string{"outcome"},
	)

	// FetchDuration observes the latency of single upstream requests.
	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goldrate_upstream_request_duration_seconds",
			Help:    "Duration of requests to the upstream quote endpoint.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// CacheLookups counts cache lookups by result ("hit", "miss").
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldrate_cache_lookups_total",
			Help: "Feed cache lookups by result.",
		},
		[]string{"result"},
	)

	// RetryExhausted counts fetch cycles that failed on every attempt.
	RetryExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "goldrate_fetch_retries_exhausted_total",
			Help: "Fetch cycles that failed after the last retry.",
		},
	)

	// NormalizeFailures counts per-instrument records that could not be
	// turned into a price, by error kind.
	NormalizeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldrate_normalize_failures_total",
			Help: "Quote records rejected during normalization.",
		},
		[]string{"kind"},
	)

	// HTTPRequests counts API requests by route template and status code.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldrate_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)
)

// NewRegistry returns a registry with the pipeline collectors plus the
// standard process and Go collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		FetchAttempts,
		FetchDuration,
		CacheLookups,
		RetryExhausted,
		NormalizeFailures,
		HTTPRequests,
	)
	return reg
}
