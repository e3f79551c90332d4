package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/services/gateway"
	"github.com/amaumene/unig/internal/telemetry"
	"github.com/amaumene/unig/internal/utils"
)

// maxConcurrentCommands bounds the commands Run executes at once
const maxConcurrentCommands = 8

// AppOptions tunes the view coordination
type AppOptions struct {
	CompactThreshold float64
	PrefetchMargin   int
}

// OverlaySnapshot is the published state of the detail overlay
type OverlaySnapshot struct {
	GameID          int                       `json:"gameId"`
	Item            *models.CatalogItem       `json:"item,omitempty"`
	Optimistic      bool                      `json:"optimistic"`
	Membership      *models.LibraryMembership `json:"membership,omitempty"`
	MembershipKnown bool                      `json:"membershipKnown"`
	Pending         bool                      `json:"pending"`
	Actions         []Action                  `json:"actions"`
}

// Snapshot is an immutable copy of the client state
type Snapshot struct {
	Filter         string               `json:"filter"`
	FilterMode     string               `json:"filterMode"`
	FilterRevision uint64               `json:"filterRevision"`
	Heading        string               `json:"heading"`
	FeedState      string               `json:"feedState"`
	Generation     uint64               `json:"generation"`
	Page           int                  `json:"page"`
	HasMore        bool                 `json:"hasMore"`
	Items          []models.CatalogItem `json:"items"`
	Error          string               `json:"error,omitempty"`
	Compact        bool                 `json:"compact"`
	Overlay        *OverlaySnapshot     `json:"overlay,omitempty"`
	User           *models.User         `json:"user,omitempty"`
	Notifications  []Notification       `json:"notifications"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// App owns the client components and routes every completion to its owner.
// All methods except Snapshot must be called from a single goroutine.
type App struct {
	ctx      context.Context
	session  *SessionStore
	feed     *CatalogFeed
	filter   *FilterState
	overlay  *DetailOverlay
	viewport *ViewportCoordinator
	notes    *Notifications
	logger   *logrus.Logger

	snapshot atomic.Pointer[Snapshot]
}

// NewApp wires the components. ctx bounds every request the app issues.
func NewApp(ctx context.Context, catalog CatalogSource, library LibrarySource, session *SessionStore, metrics *telemetry.Metrics, opts AppOptions, logger *logrus.Logger) *App {
	notes := NewNotifications()
	feed := NewCatalogFeed(ctx, catalog, library, metrics, logger)

	a := &App{
		ctx:      ctx,
		session:  session,
		feed:     feed,
		filter:   NewFilterState(feed, session, notes, logger),
		overlay:  NewDetailOverlay(ctx, catalog, library, session, notes, metrics, logger),
		viewport: NewViewportCoordinator(opts.CompactThreshold, opts.PrefetchMargin),
		notes:    notes,
		logger:   logger,
	}
	a.publish()
	return a
}

// Init loads the first page of the default listing
func (a *App) Init() tea.Cmd {
	return a.done(a.feed.Advance())
}

// Update routes a message to the component that issued it
func (a *App) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case FeedLoadedMsg:
		a.feed.Complete(msg)
	case DetailLoadedMsg:
		a.overlay.CompleteDetail(msg)
	case MembershipLoadedMsg:
		a.overlay.CompleteMembership(msg)
	case MutationDoneMsg:
		a.overlay.CompleteMutation(msg)
	case LoginDoneMsg:
		cmd = a.completeLogin(msg)
	case SignupDoneMsg:
		a.completeSignup(msg)
	case DismissMsg:
		a.notes.Dismiss(msg.ID)
	default:
		return nil
	}

	return a.done(cmd)
}

// ApplyFilter makes sel the active selection
func (a *App) ApplyFilter(sel models.FilterSelection) tea.Cmd {
	return a.done(a.filter.Apply(sel))
}

// ApplyNav applies the selection of a navigation entry
func (a *App) ApplyNav(link utils.NavLink) tea.Cmd {
	sel, err := link.Selection()
	if err != nil {
		a.logger.WithError(err).WithField("label", link.Label).Warn("Invalid navigation entry")
		return nil
	}
	return a.ApplyFilter(sel)
}

// ResetToHome clears the filter, closes the overlay and scrolls to the top
func (a *App) ResetToHome() tea.Cmd {
	a.overlay.Close()
	return a.done(a.filter.Clear())
}

// Scroll records the viewport offset and reports whether compact mode toggled
func (a *App) Scroll(offset, viewportHeight int) bool {
	changed := a.viewport.Scroll(offset, viewportHeight)
	if changed {
		a.publish()
	}
	return changed
}

// ObserveTail is called with the distance in rows between the last rendered
// item and the bottom of the viewport
func (a *App) ObserveTail(distance int) tea.Cmd {
	items := a.feed.items
	if len(items) == 0 {
		return nil
	}
	tail := TailKey{
		Generation: a.feed.Generation(),
		Count:      len(items),
		LastID:     items[len(items)-1].ID,
	}
	if !a.viewport.ObserveTail(tail, distance) {
		return nil
	}
	return a.done(a.feed.Advance())
}

// OpenItem opens the overlay for id, rendering the feed's copy right away
func (a *App) OpenItem(id int) tea.Cmd {
	return a.done(a.overlay.Open(id, a.feed.Find(id)))
}

// CloseItem closes the overlay. The feed is left as it is.
func (a *App) CloseItem() {
	a.overlay.Close()
	a.publish()
}

// AddToLibrary adds the open item under status
func (a *App) AddToLibrary(status models.LibraryStatus) tea.Cmd {
	return a.done(a.overlay.Add(status))
}

// RemoveFromLibrary removes the open item from the library
func (a *App) RemoveFromLibrary() tea.Cmd {
	return a.done(a.overlay.Remove())
}

// Login starts a login attempt
func (a *App) Login(creds models.Credentials) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		identity, err := a.session.Authenticate(ctx, creds)
		return LoginDoneMsg{Identity: identity, Err: err}
	}
}

func (a *App) completeLogin(msg LoginDoneMsg) tea.Cmd {
	if msg.Err != nil {
		a.notifyFailure(msg.Err)
		return nil
	}
	a.session.Establish(msg.Identity)
	a.notes.Push(LevelSuccess, "Welcome back!", "")
	return a.overlay.SessionChanged()
}

// Signup starts an account creation
func (a *App) Signup(reg models.Registration) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		err := a.session.Signup(ctx, reg)
		return SignupDoneMsg{Username: reg.Username, Err: err}
	}
}

func (a *App) completeSignup(msg SignupDoneMsg) {
	if msg.Err != nil {
		a.notifyFailure(msg.Err)
		return
	}
	a.notes.Push(LevelSuccess, "Account created! Please login.", "")
}

// Logout ends the session. A library listing falls back to the default one.
func (a *App) Logout() tea.Cmd {
	a.session.Logout()
	cmds := []tea.Cmd{a.overlay.SessionChanged()}
	if _, library := a.filter.Current().Library(); library {
		cmds = append(cmds, a.filter.Apply(models.NoFilter()))
	}
	return a.done(tea.Batch(cmds...))
}

// ExpireNotifications drops notifications past their lifetime
func (a *App) ExpireNotifications(now time.Time) bool {
	removed := a.notes.Expire(now)
	if removed {
		a.publish()
	}
	return removed
}

// DismissLatest dismisses the most recent notification
func (a *App) DismissLatest() tea.Cmd {
	note, ok := a.notes.Last()
	if !ok {
		return nil
	}
	return emit(DismissMsg{ID: note.ID})
}

// Session returns the session store
func (a *App) Session() *SessionStore {
	return a.session
}

// Snapshot returns the last published state. Safe from any goroutine.
func (a *App) Snapshot() *Snapshot {
	return a.snapshot.Load()
}

// Run executes cmd and every command it leads to, applying the resulting
// messages on the calling goroutine. Commands of one round run concurrently.
// It returns when no command is left or ctx is done.
func (a *App) Run(ctx context.Context, cmd tea.Cmd) error {
	queue := []tea.Cmd{cmd}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		round := queue
		queue = nil
		msgs := make([]tea.Msg, len(round))

		var g errgroup.Group
		g.SetLimit(maxConcurrentCommands)
		for i, c := range round {
			if c == nil {
				continue
			}
			g.Go(func() error {
				msgs[i] = c()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("failed to run commands: %w", err)
		}

		for _, msg := range msgs {
			switch msg := msg.(type) {
			case nil:
			case tea.BatchMsg:
				queue = append(queue, msg...)
			default:
				if next := a.Update(msg); next != nil {
					queue = append(queue, next)
				}
			}
		}
	}
	return nil
}

func (a *App) done(cmd tea.Cmd) tea.Cmd {
	a.publish()
	return cmd
}

func (a *App) publish() {
	snap := &Snapshot{
		Filter:         a.filter.Current().String(),
		FilterMode:     a.filter.Current().Mode().String(),
		FilterRevision: a.filter.Revision(),
		Heading:        a.filter.Current().Heading(),
		FeedState:      a.feed.State().String(),
		Generation:     a.feed.Generation(),
		Page:           a.feed.Page(),
		HasMore:        a.feed.HasMore(),
		Items:          a.feed.Items(),
		Compact:        a.viewport.Compact(),
		Notifications:  a.notes.Active(),
		UpdatedAt:      time.Now(),
	}
	if err := a.feed.Err(); err != nil {
		snap.Error = err.Error()
	}
	if identity, ok := a.session.Identity(); ok {
		user := identity.User
		snap.User = &user
	}
	if a.overlay.IsOpen() {
		membership, known := a.overlay.Membership()
		snap.Overlay = &OverlaySnapshot{
			GameID:          a.overlay.GameID(),
			Item:            a.overlay.Item(),
			Optimistic:      a.overlay.Optimistic(),
			Membership:      membership,
			MembershipKnown: known,
			Pending:         a.overlay.Pending(),
			Actions:         a.overlay.Actions(),
		}
	}
	a.snapshot.Store(snap)
}

// notifyFailure reports a rejected form as a warning and a server failure as an error
func (a *App) notifyFailure(err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		a.notes.Push(LevelWarning, verr.Message, "")
		return
	}
	a.notes.Push(LevelError, "Error", gateway.UserMessage(err, "Something went wrong"))
}
