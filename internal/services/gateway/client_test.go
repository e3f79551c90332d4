package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/amaumene/unig/internal/telemetry"
	"github.com/amaumene/unig/internal/utils"
)

type staticToken string

func (s staticToken) Token() (string, bool) {
	return string(s), s != ""
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts.BaseURL = server.URL + "/api"
	if opts.Name == "" {
		opts.Name = "catalog"
	}
	opts.RatePerSecond = 1000
	opts.HTTPClient = server.Client()
	return NewClient(opts, utils.NewDiscardLogger())
}

func TestClient_DoSetsHeaders(t *testing.T) {
	var got *http.Request
	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}, Options{Tokens: staticToken("secret")})

	data, err := client.Do(context.Background(), "add", http.MethodPost, "/games", nil, map[string]int{"gameId": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	require.NotNil(t, got)
	assert.Equal(t, "/api/games", got.URL.Path)
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"gameId":3}`, gotBody)
}

func TestClient_DoAnonymousAndQuery(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`[]`))
	}, Options{Tokens: staticToken("")})

	_, err := client.Do(context.Background(), "search", http.MethodGet, "/games/search", url.Values{"query": {"half life"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Header.Get("Authorization"))
	assert.Equal(t, "half life", got.URL.Query().Get("query"))
}

func TestClient_DoRejectsOversizedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", maxResponseBytes+1)))
	}, Options{})

	_, err := client.Do(context.Background(), "list", http.MethodGet, "/games", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestClient_DoErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
		wantStatus int
		temporary  bool
	}{
		{name: "not found", statusCode: http.StatusNotFound, wantErr: ErrNotFound, wantStatus: 404},
		{name: "client error", statusCode: http.StatusBadRequest, body: "Game already in library", wantErr: ErrStatus, wantStatus: 400},
		{name: "server error", statusCode: http.StatusBadGateway, wantErr: ErrStatus, wantStatus: 502, temporary: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}, Options{})

			_, err := client.Do(context.Background(), "op", http.MethodGet, "/games/1", nil, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var gerr *Error
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, tt.wantStatus, gerr.Status)
			assert.Equal(t, tt.temporary, gerr.Temporary())
		})
	}
}

func TestClient_DoTransportError(t *testing.T) {
	client := NewClient(Options{Name: "account", BaseURL: "http://127.0.0.1:1/api"}, utils.NewDiscardLogger())

	_, err := client.Do(context.Background(), "check", http.MethodGet, "/games/1/check", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Zero(t, gerr.Status)
}

func TestClient_Decode(t *testing.T) {
	client := NewClient(Options{Name: "catalog", BaseURL: "http://localhost"}, utils.NewDiscardLogger())

	var v []int
	assert.NoError(t, client.Decode("list", []byte(`[1,2]`), &v))
	assert.Equal(t, []int{1, 2}, v)
	assert.ErrorIs(t, client.Decode("list", []byte(`<html>`), &v), ErrDecode)
	assert.ErrorIs(t, client.DecodeError("list", "unexpected shape"), ErrDecode)
}

func TestClient_RecordsSpansAndMetrics(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, Options{Name: "account", Tracer: telemetry.Tracer(provider), Metrics: metrics})

	_, err := client.Do(context.Background(), "check", http.MethodGet, "/games/9/check", nil, nil)
	require.ErrorIs(t, err, ErrNotFound)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "account.check", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestUserMessage(t *testing.T) {
	plain := wrapError("account", "add", 400, "Game already in library", ErrStatus)
	jsonBody := wrapError("account", "add", 500, `{"error":"boom"}`, ErrStatus)

	assert.Equal(t, "Game already in library", UserMessage(plain, "Could not add game"))
	assert.Equal(t, "Could not add game", UserMessage(jsonBody, "Could not add game"))
	withMessage := wrapError("account", "login", 401, `{"message":"Bad credentials"}`, ErrStatus)
	assert.Equal(t, "Bad credentials", UserMessage(withMessage, "Something went wrong"))
	assert.Equal(t, "Could not add game", UserMessage(errors.New("x"), "Could not add game"))
}
