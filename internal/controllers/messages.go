package controllers

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amaumene/unig/internal/models"
)

// CatalogSource reads the public catalog
type CatalogSource interface {
	ListGames(ctx context.Context) ([]models.CatalogItem, error)
	SearchGames(ctx context.Context, query string) ([]models.CatalogItem, error)
	GamesByGenre(ctx context.Context, genre string) ([]models.CatalogItem, error)
	GetGame(ctx context.Context, id int) (*models.CatalogItem, error)
}

// LibrarySource reads and mutates the signed-in user's library
type LibrarySource interface {
	Library(ctx context.Context, kind models.LibraryKind) ([]models.CatalogItem, error)
	CheckGame(ctx context.Context, gameID int) (*models.LibraryMembership, error)
	AddGame(ctx context.Context, item models.CatalogItem, status models.LibraryStatus) (*models.LibraryMembership, error)
	RemoveGame(ctx context.Context, gameID int) error
}

// SessionReader reports whether a session exists
type SessionReader interface {
	Authenticated() bool
}

// FeedLoadedMsg carries the result of one feed page fetch
type FeedLoadedMsg struct {
	Generation uint64
	Page       int
	Selection  models.FilterSelection
	Items      []models.CatalogItem
	Err        error
}

// DetailLoadedMsg carries the full record of the game shown in the overlay
type DetailLoadedMsg struct {
	Generation uint64
	GameID     int
	Item       *models.CatalogItem
	Err        error
}

// MembershipLoadedMsg carries the library status of the game shown in the overlay
type MembershipLoadedMsg struct {
	Generation uint64
	GameID     int
	Membership *models.LibraryMembership
	Err        error
}

// MutationKind distinguishes library mutations
type MutationKind int

const (
	MutationAdd MutationKind = iota
	MutationRemove
)

// MutationDoneMsg reports the server's answer to a library mutation
type MutationDoneMsg struct {
	Generation uint64
	GameID     int
	Kind       MutationKind
	Status     models.LibraryStatus
	Membership *models.LibraryMembership
	Err        error
}

// LoginDoneMsg reports a login attempt
type LoginDoneMsg struct {
	Identity models.SessionIdentity
	Err      error
}

// SignupDoneMsg reports a signup attempt
type SignupDoneMsg struct {
	Username string
	Err      error
}

// ScrollToCatalogMsg asks the view to bring the grid into view
type ScrollToCatalogMsg struct{}

// ScrollToTopMsg asks the view to scroll back to the top
type ScrollToTopMsg struct{}

// DismissMsg dismisses one notification
type DismissMsg struct {
	ID uint64
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
