package controllers

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/utils"
)

type fakeCatalog struct {
	mu        sync.Mutex
	lists     map[string][]models.CatalogItem
	details   map[int]models.CatalogItem
	listErr   error
	detailErr error
	calls     []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		lists:   map[string][]models.CatalogItem{},
		details: map[int]models.CatalogItem{},
	}
}

func (f *fakeCatalog) record(call string) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.CatalogItem(nil), f.lists[call]...), nil
}

func (f *fakeCatalog) ListGames(ctx context.Context) ([]models.CatalogItem, error) {
	return f.record("list")
}

func (f *fakeCatalog) SearchGames(ctx context.Context, query string) ([]models.CatalogItem, error) {
	return f.record("search:" + query)
}

func (f *fakeCatalog) GamesByGenre(ctx context.Context, genre string) ([]models.CatalogItem, error) {
	return f.record("genre:" + genre)
}

func (f *fakeCatalog) GetGame(ctx context.Context, id int) (*models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "detail")
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	item, ok := f.details[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &item, nil
}

func (f *fakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeLibrary struct {
	mu          sync.Mutex
	lists       map[models.LibraryKind][]models.CatalogItem
	memberships map[int]*models.LibraryMembership
	checkErr    error
	addErr      error
	removeErr   error
	calls       []string
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		lists:       map[models.LibraryKind][]models.CatalogItem{},
		memberships: map[int]*models.LibraryMembership{},
	}
}

func (f *fakeLibrary) Library(ctx context.Context, kind models.LibraryKind) ([]models.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "library:"+string(kind))
	return append([]models.CatalogItem(nil), f.lists[kind]...), nil
}

func (f *fakeLibrary) CheckGame(ctx context.Context, gameID int) (*models.LibraryMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "check")
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	return f.memberships[gameID], nil
}

func (f *fakeLibrary) AddGame(ctx context.Context, item models.CatalogItem, status models.LibraryStatus) (*models.LibraryMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "add:"+string(status))
	if f.addErr != nil {
		return nil, f.addErr
	}
	m := &models.LibraryMembership{GameID: item.ID, Status: status}
	f.memberships[item.ID] = m
	return m, nil
}

func (f *fakeLibrary) RemoveGame(ctx context.Context, gameID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "remove")
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.memberships, gameID)
	return nil
}

func (f *fakeLibrary) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeAuth struct {
	identity  models.SessionIdentity
	loginErr  error
	signupErr error
	logins    int
	signups   int
}

func (f *fakeAuth) Login(ctx context.Context, creds models.Credentials) (models.SessionIdentity, error) {
	f.logins++
	if f.loginErr != nil {
		return models.SessionIdentity{}, f.loginErr
	}
	return f.identity, nil
}

func (f *fakeAuth) Signup(ctx context.Context, reg models.Registration) error {
	f.signups++
	return f.signupErr
}

type memorySlot struct {
	identity *models.SessionIdentity
	saveErr  error
}

func (m *memorySlot) SaveSession(identity models.SessionIdentity) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.identity = &identity
	return nil
}

func (m *memorySlot) LoadSession() (models.SessionIdentity, error) {
	if m.identity == nil {
		return models.SessionIdentity{}, models.ErrNoSession
	}
	return *m.identity, nil
}

func (m *memorySlot) DeleteSession() error {
	m.identity = nil
	return nil
}

type fixture struct {
	app     *App
	catalog *fakeCatalog
	library *fakeLibrary
	auth    *fakeAuth
	slot    *memorySlot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := utils.NewDiscardLogger()
	f := &fixture{
		catalog: newFakeCatalog(),
		library: newFakeLibrary(),
		auth:    &fakeAuth{identity: models.SessionIdentity{Token: "jwt", User: models.User{ID: 1, Username: "ada"}}},
		slot:    &memorySlot{},
	}
	session := NewSessionStore(f.auth, f.slot, logger)
	f.app = NewApp(context.Background(), f.catalog, f.library, session, nil, AppOptions{}, logger)
	return f
}

func (f *fixture) run(t *testing.T, cmd tea.Cmd) *Snapshot {
	t.Helper()
	require.NoError(t, f.app.Run(context.Background(), cmd))
	return f.app.Snapshot()
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	f.run(t, f.app.Login(models.Credentials{Username: "ada", Password: "pw"}))
	require.True(t, f.app.Session().Authenticated())
}

// collect executes cmd without applying the resulting messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func feedMsgOf(t *testing.T, msgs []tea.Msg) FeedLoadedMsg {
	t.Helper()
	for _, msg := range msgs {
		if m, ok := msg.(FeedLoadedMsg); ok {
			return m
		}
	}
	t.Fatalf("no FeedLoadedMsg in %v", msgs)
	return FeedLoadedMsg{}
}

func games(ids ...int) []models.CatalogItem {
	items := make([]models.CatalogItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, models.CatalogItem{ID: id, Title: "Game " + string(rune('A'+id%26)), Price: 10})
	}
	return items
}
