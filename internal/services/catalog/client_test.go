package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/unig/internal/services/gateway"
	"github.com/amaumene/unig/internal/utils"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := utils.NewDiscardLogger()
	gw := gateway.NewClient(gateway.Options{
		Name:          "catalog",
		BaseURL:       server.URL + "/api",
		RatePerSecond: 1000,
		HTTPClient:    server.Client(),
	}, logger)

	client := NewClient(gw, time.Minute, logger)
	client.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return client
}

func TestClient_ListEndpoints(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(`[{"id":1,"title":"Elden Ring","price":59.99,"imageUrl":"x.jpg","rating":4.5,"releaseDate":"2022-02-25","genre":"RPG"}]`))
	})
	ctx := context.Background()

	items, err := client.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/api/games", gotPath)
	assert.Equal(t, "Elden Ring", items[0].Title)
	require.NotNil(t, items[0].Rating)
	assert.Equal(t, 4.5, *items[0].Rating)

	_, err = client.SearchGames(ctx, "Grand Theft Auto V")
	require.NoError(t, err)
	assert.Equal(t, "/api/games/search", gotPath)
	assert.Equal(t, "Grand Theft Auto V", gotQuery)

	_, err = client.GamesByGenre(ctx, "Role Playing")
	require.NoError(t, err)
	assert.Equal(t, "/api/games/genre/Role%20Playing", gotPath)
}

func TestClient_ParseContract(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
		wantErr   error
	}{
		{name: "bare array", body: `[{"id":1},{"id":2}]`, wantCount: 2},
		{name: "results envelope", body: `{"results":[{"id":3}]}`, wantCount: 1},
		{name: "empty array", body: `[]`, wantCount: 0},
		{name: "object without results", body: `{"count":0}`, wantErr: gateway.ErrDecode},
		{name: "not json", body: `<html></html>`, wantErr: gateway.ErrDecode},
		{name: "scalar", body: `42`, wantErr: gateway.ErrDecode},
		{name: "empty body", body: ``, wantErr: gateway.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			items, err := client.ListGames(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tt.wantCount)
		})
	}
}

func TestClient_GetGameRetriesAndCaches(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":7,"title":"Cyberpunk 2077","description":"Night City"}`))
	})

	item, err := client.GetGame(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Night City", item.Description)
	assert.Equal(t, int32(2), calls.Load())

	// Second lookup is served from the cache
	item, err = client.GetGame(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Cyberpunk 2077", item.Title)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_GetGameDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetGame(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GetGameGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetGame(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrStatus)
	assert.Equal(t, int32(1+detailRetries), calls.Load())
}
