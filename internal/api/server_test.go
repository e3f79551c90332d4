package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/unig/internal/api/handlers"
	"github.com/amaumene/unig/internal/controllers"
	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/telemetry"
	"github.com/amaumene/unig/internal/utils"
)

type staticSource struct {
	snap *controllers.Snapshot
}

func (s staticSource) Snapshot() *controllers.Snapshot {
	return s.snap
}

func newTestServer(snap *controllers.Snapshot) *Server {
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	metrics.StaleCompletion("feed")
	return NewServer("127.0.0.1:0", staticSource{snap: snap}, metrics, utils.NewDiscardLogger())
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(nil)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}

func TestServer_Status(t *testing.T) {
	s := newTestServer(&controllers.Snapshot{
		Filter:    "genre:RPG",
		FeedState: "loaded",
		Items:     []models.CatalogItem{{ID: 1}, {ID: 2}},
		Compact:   true,
		User:      &models.User{ID: 1, Username: "ada"},
	})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/status", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got handlers.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, handlers.StatusResponse{
		Filter:        "genre:RPG",
		FeedState:     "loaded",
		Items:         2,
		Compact:       true,
		Authenticated: true,
	}, got)
}

func TestServer_SnapshotNotReady(t *testing.T) {
	s := newTestServer(nil)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/snapshot", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(&controllers.Snapshot{})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `unig_stale_completions_total{component="feed"} 1`)
}
