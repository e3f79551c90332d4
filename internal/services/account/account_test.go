package account

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/services/gateway"
	"github.com/amaumene/unig/internal/utils"
)

type staticToken string

func (s staticToken) Token() (string, bool) {
	return string(s), s != ""
}

func newTestGateway(t *testing.T, handler http.HandlerFunc, tokens gateway.TokenSource) *gateway.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return gateway.NewClient(gateway.Options{
		Name:          "account",
		BaseURL:       server.URL + "/api",
		RatePerSecond: 1000,
		Tokens:        tokens,
		HTTPClient:    server.Client(),
	}, utils.NewDiscardLogger())
}

func TestAuthClient_Login(t *testing.T) {
	var body map[string]string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"token":"jwt","id":12,"username":"ada"}`))
	}, nil)

	identity, err := NewAuthClient(gw, utils.NewDiscardLogger()).Login(context.Background(), models.Credentials{Username: "ada", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"username": "ada", "password": "pw"}, body)
	assert.Equal(t, models.SessionIdentity{Token: "jwt", User: models.User{ID: 12, Username: "ada"}}, identity)
}

func TestAuthClient_LoginFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "rejected", status: http.StatusUnauthorized, body: `{"message":"Bad credentials"}`, wantErr: gateway.ErrStatus},
		{name: "missing token", status: http.StatusOK, body: `{"id":1}`, wantErr: gateway.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, nil)

			_, err := NewAuthClient(gw, utils.NewDiscardLogger()).Login(context.Background(), models.Credentials{Username: "ada", Password: "x"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthClient_SignupOmitsConfirmation(t *testing.T) {
	var raw []byte
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/signup", r.URL.Path)
		raw, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`User registered successfully!`))
	}, nil)

	err := NewAuthClient(gw, utils.NewDiscardLogger()).Signup(context.Background(), models.Registration{
		Username: "ada", Email: "ada@example.com", Password: "pw", ConfirmPassword: "pw",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"ada","email":"ada@example.com","password":"pw"}`, string(raw))
}

func TestLibraryClient_CheckGame(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/games/1/check":
			_, _ = w.Write([]byte(`{"id":5,"gameId":1,"status":"PLAN_TO_PLAY","addedAt":"2024-03-01T10:15:30.123456"}`))
		case "/api/games/2/check":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}, staticToken("jwt"))
	client := NewLibraryClient(gw, utils.NewDiscardLogger())

	membership, err := client.CheckGame(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, membership)
	assert.Equal(t, models.StatusPlanToPlay, membership.Status)
	require.NotNil(t, membership.AddedAt)
	assert.Equal(t, time.March, membership.AddedAt.Month())

	membership, err = client.CheckGame(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, membership, "404 means not in library")

	_, err = client.CheckGame(context.Background(), 3)
	assert.ErrorIs(t, err, gateway.ErrStatus)
}

func TestLibraryClient_AddGamePostsSnapshot(t *testing.T) {
	var posted map[string]interface{}
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/games", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		_, _ = w.Write([]byte(`{"id":9,"gameId":3,"status":"PLAYING","addedAt":"2024-03-01T10:15:30"}`))
	}, staticToken("jwt"))

	rating := 4.4
	item := models.CatalogItem{ID: 3, Title: "Elden Ring", Description: "Rise", Price: 49.99, ImageURL: "e.jpg", Rating: &rating, ReleaseDate: "2022-02-25", Genre: "RPG"}

	membership, err := NewLibraryClient(gw, utils.NewDiscardLogger()).AddGame(context.Background(), item, models.StatusPlaying)
	require.NoError(t, err)
	assert.Equal(t, 3, membership.GameID)
	assert.Equal(t, models.StatusPlaying, membership.Status)

	assert.Equal(t, map[string]interface{}{
		"gameId":          3.0,
		"title":           "Elden Ring",
		"backgroundImage": "e.jpg",
		"rawgRating":      4.4,
		"description":     "Rise",
		"price":           49.99,
		"genre":           "RPG",
		"releaseDate":     "2022-02-25",
		"status":          "PLAYING",
	}, posted)
}

func TestLibraryClient_AddGameRejected(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`Game already in your list`))
	}, staticToken("jwt"))

	_, err := NewLibraryClient(gw, utils.NewDiscardLogger()).AddGame(context.Background(), models.CatalogItem{ID: 3}, models.StatusPlanToPlay)
	require.Error(t, err)
	assert.Equal(t, "Game already in your list", gateway.UserMessage(err, "Could not add game"))
}

func TestLibraryClient_RemoveGame(t *testing.T) {
	var method, path string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_, _ = w.Write([]byte(`Game removed`))
	}, staticToken("jwt"))

	require.NoError(t, NewLibraryClient(gw, utils.NewDiscardLogger()).RemoveGame(context.Background(), 44))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/games/44", path)
}

func TestLibraryClient_LibraryMapsEntries(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/games/wishlist", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":1,"gameId":10,"title":"GTA V","backgroundImage":"g.jpg","rawgRating":4.5,"price":null,"genre":"Action","releaseDate":"2013-09-17","status":"PLAN_TO_PLAY"},
			{"id":2,"gameId":11,"title":"Hades","price":24.99,"status":"PLAN_TO_PLAY"}
		]`))
	}, staticToken("jwt"))

	items, err := NewLibraryClient(gw, utils.NewDiscardLogger()).Library(context.Background(), models.LibraryWishlist)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 10, items[0].ID)
	assert.Equal(t, "g.jpg", items[0].ImageURL)
	assert.Equal(t, DefaultPrice, items[0].Price)
	require.NotNil(t, items[0].Rating)
	assert.Equal(t, 4.5, *items[0].Rating)
	assert.Equal(t, 24.99, items[1].Price)
	assert.Nil(t, items[1].Rating)
}

func TestLibraryClient_LibraryRejectsUnknownKind(t *testing.T) {
	client := NewLibraryClient(gateway.NewClient(gateway.Options{Name: "account", BaseURL: "http://localhost"}, utils.NewDiscardLogger()), utils.NewDiscardLogger())
	_, err := client.Library(context.Background(), models.LibraryKind("favourites"))
	assert.Error(t, err)
}
