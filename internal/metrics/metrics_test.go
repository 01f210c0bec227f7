package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	// Each call builds an independent registry over the same collectors.
	a := NewRegistry()
	b := NewRegistry()

	FetchAttempts.WithLabelValues("ok").Inc()
	CacheLookups.WithLabelValues("hit").Inc()
	NormalizeFailures.WithLabelValues("malformed_field").Inc()
	HTTPRequests.WithLabelValues("GET", "/api/v1/quotes", "200").Inc()

	families, err := a.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"goldrate_upstream_requests_total",
		"goldrate_upstream_request_duration_seconds",
		"goldrate_cache_lookups_total",
		"goldrate_fetch_retries_exhausted_total",
		"goldrate_normalize_failures_total",
		"goldrate_http_requests_total",
		"go_goroutines",
	} {
		require.True(t, names[want], "missing %s", want)
	}

	n, err := testutil.GatherAndCount(b, "goldrate_cache_lookups_total")
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 1)
}
