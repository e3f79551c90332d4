package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveRequest("catalog", "list", "ok", 20*time.Millisecond)
	m.ObserveRequest("catalog", "list", "ok", 30*time.Millisecond)
	m.ObserveRequest("account", "check", "not_found", time.Millisecond)
	m.StaleCompletion("feed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("catalog", "list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("account", "check", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stale.WithLabelValues("feed")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("catalog", "list", "ok", time.Second)
		m.StaleCompletion("feed")
	})
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.StaleCompletion("overlay")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `unig_stale_completions_total{component="overlay"} 1`)
}
