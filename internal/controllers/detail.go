package controllers

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/services/gateway"
	"github.com/amaumene/unig/internal/telemetry"
)

// Action is a library action offered by the overlay
type Action string

const (
	ActionWishlist Action = "wishlist"
	ActionPlaying  Action = "playing"
	ActionRemove   Action = "remove"
)

// Status returns the library status an add action stores
func (a Action) Status() (models.LibraryStatus, bool) {
	switch a {
	case ActionWishlist:
		return models.StatusPlanToPlay, true
	case ActionPlaying:
		return models.StatusPlaying, true
	default:
		return "", false
	}
}

func actionFor(status models.LibraryStatus) (Action, bool) {
	switch status {
	case models.StatusPlanToPlay:
		return ActionWishlist, true
	case models.StatusPlaying:
		return ActionPlaying, true
	default:
		return "", false
	}
}

// DetailOverlay is the expanded card of one catalog item with its library actions
type DetailOverlay struct {
	ctx     context.Context
	catalog CatalogSource
	library LibrarySource
	session SessionReader
	notes   *Notifications
	metrics *telemetry.Metrics
	logger  *logrus.Logger

	open       bool
	gameID     int
	item       *models.CatalogItem
	optimistic bool

	// generation tags detail fetches; checkGen tags membership checks and
	// mutations, which also go stale when the session changes
	generation uint64
	checkGen   uint64

	membership      *models.LibraryMembership
	membershipKnown bool
	pending         bool
}

// NewDetailOverlay creates a closed overlay
func NewDetailOverlay(ctx context.Context, catalog CatalogSource, library LibrarySource, session SessionReader, notes *Notifications, metrics *telemetry.Metrics, logger *logrus.Logger) *DetailOverlay {
	return &DetailOverlay{
		ctx:     ctx,
		catalog: catalog,
		library: library,
		session: session,
		notes:   notes,
		metrics: metrics,
		logger:  logger,
	}
}

// Open shows game id, rendering known immediately when given, and fetches the
// full record plus the library membership when a session exists
func (o *DetailOverlay) Open(id int, known *models.CatalogItem) tea.Cmd {
	o.open = true
	o.gameID = id
	o.item = nil
	o.optimistic = false
	if known != nil {
		item := *known
		o.item = &item
		o.optimistic = true
	}
	o.generation++
	o.resetMembership()

	return tea.Batch(o.fetchDetail(o.generation, id), o.checkMembership())
}

// Close hides the overlay. Pending completions for it become stale.
func (o *DetailOverlay) Close() {
	if !o.open {
		return
	}
	o.open = false
	o.generation++
	o.checkGen++
	o.pending = false
}

// SessionChanged refreshes the membership after login or logout
func (o *DetailOverlay) SessionChanged() tea.Cmd {
	o.resetMembership()
	if !o.open {
		return nil
	}
	return o.checkMembership()
}

func (o *DetailOverlay) resetMembership() {
	o.checkGen++
	o.membership = nil
	o.membershipKnown = false
	o.pending = false
}

func (o *DetailOverlay) fetchDetail(generation uint64, id int) tea.Cmd {
	ctx := o.ctx
	return func() tea.Msg {
		item, err := o.catalog.GetGame(ctx, id)
		return DetailLoadedMsg{Generation: generation, GameID: id, Item: item, Err: err}
	}
}

func (o *DetailOverlay) checkMembership() tea.Cmd {
	if !o.session.Authenticated() || o.library == nil {
		return nil
	}
	ctx, generation, id := o.ctx, o.checkGen, o.gameID
	return func() tea.Msg {
		membership, err := o.library.CheckGame(ctx, id)
		return MembershipLoadedMsg{Generation: generation, GameID: id, Membership: membership, Err: err}
	}
}

// CompleteDetail applies a detail fetch. Failures keep the optimistic render.
func (o *DetailOverlay) CompleteDetail(msg DetailLoadedMsg) bool {
	if !o.open || msg.Generation != o.generation || msg.GameID != o.gameID {
		o.stale("detail", msg.GameID)
		return false
	}
	if msg.Err != nil || msg.Item == nil {
		o.logger.WithError(msg.Err).WithField("game_id", msg.GameID).Debug("Game detail unavailable")
		return true
	}
	item := *msg.Item
	o.item = &item
	o.optimistic = false
	return true
}

// CompleteMembership applies a membership check. A failed check reads as not
// in the library.
func (o *DetailOverlay) CompleteMembership(msg MembershipLoadedMsg) bool {
	if !o.open || msg.Generation != o.checkGen || msg.GameID != o.gameID {
		o.stale("membership", msg.GameID)
		return false
	}
	if msg.Err != nil {
		o.logger.WithError(msg.Err).WithField("game_id", msg.GameID).Debug("Membership check failed")
	}
	o.membership = msg.Membership
	o.membershipKnown = true
	return true
}

// Actions returns the library actions currently offered
func (o *DetailOverlay) Actions() []Action {
	if !o.open || o.item == nil || !o.session.Authenticated() || !o.membershipKnown || o.pending {
		return nil
	}
	if o.membership != nil {
		return []Action{ActionRemove}
	}
	return []Action{ActionWishlist, ActionPlaying}
}

func (o *DetailOverlay) offered(action Action) bool {
	for _, a := range o.Actions() {
		if a == action {
			return true
		}
	}
	return false
}

// Add stores the shown item under status. It does nothing unless the
// matching action is offered.
func (o *DetailOverlay) Add(status models.LibraryStatus) tea.Cmd {
	action, ok := actionFor(status)
	if !ok || !o.offered(action) {
		return nil
	}
	o.pending = true

	ctx, generation, item := o.ctx, o.checkGen, *o.item
	return func() tea.Msg {
		membership, err := o.library.AddGame(ctx, item, status)
		return MutationDoneMsg{
			Generation: generation,
			GameID:     item.ID,
			Kind:       MutationAdd,
			Status:     status,
			Membership: membership,
			Err:        err,
		}
	}
}

// Remove deletes the shown item from the library. It does nothing unless the
// remove action is offered.
func (o *DetailOverlay) Remove() tea.Cmd {
	if !o.offered(ActionRemove) {
		return nil
	}
	o.pending = true

	ctx, generation, id := o.ctx, o.checkGen, o.gameID
	return func() tea.Msg {
		err := o.library.RemoveGame(ctx, id)
		return MutationDoneMsg{Generation: generation, GameID: id, Kind: MutationRemove, Err: err}
	}
}

// CompleteMutation reports the server's answer. The notification is always
// shown; membership only changes when the answer belongs to the open item.
func (o *DetailOverlay) CompleteMutation(msg MutationDoneMsg) bool {
	o.notifyMutation(msg)

	if !o.open || msg.Generation != o.checkGen || msg.GameID != o.gameID {
		o.stale("mutation", msg.GameID)
		return false
	}
	o.pending = false
	if msg.Err != nil {
		return true
	}

	switch msg.Kind {
	case MutationAdd:
		membership := msg.Membership
		if membership == nil {
			membership = &models.LibraryMembership{GameID: msg.GameID, Status: msg.Status}
		}
		o.membership = membership
	case MutationRemove:
		o.membership = nil
	}
	o.membershipKnown = true
	return true
}

func (o *DetailOverlay) notifyMutation(msg MutationDoneMsg) {
	fields := logrus.Fields{"game_id": msg.GameID, "status": msg.Status}

	switch {
	case msg.Kind == MutationAdd && msg.Err != nil:
		o.logger.WithFields(fields).WithError(msg.Err).Warn("Failed to add game")
		o.notes.Push(LevelError, "Error", gateway.UserMessage(msg.Err, "Could not add game"))
	case msg.Kind == MutationAdd && msg.Status == models.StatusPlanToPlay:
		o.notes.Push(LevelSuccess, "Added to Wishlist!", "")
	case msg.Kind == MutationAdd:
		o.notes.Push(LevelSuccess, "Added to My Games!", "")
	case msg.Err != nil:
		o.logger.WithFields(fields).WithError(msg.Err).Warn("Failed to remove game")
		o.notes.Push(LevelError, "Error", gateway.UserMessage(msg.Err, "Could not remove game"))
	default:
		o.notes.Push(LevelInfo, "Removed from Library", "")
	}
}

func (o *DetailOverlay) stale(kind string, id int) {
	o.metrics.StaleCompletion("overlay")
	o.logger.WithFields(logrus.Fields{
		"kind":    kind,
		"game_id": id,
	}).Debug("Discarding stale overlay completion")
}

// IsOpen reports whether the overlay is shown
func (o *DetailOverlay) IsOpen() bool { return o.open }

// GameID returns the id of the shown game
func (o *DetailOverlay) GameID() int { return o.gameID }

// Item returns the shown record, nil while nothing is known yet
func (o *DetailOverlay) Item() *models.CatalogItem {
	if o.item == nil {
		return nil
	}
	item := *o.item
	return &item
}

// Optimistic reports whether the shown record came from the feed rather than a detail fetch
func (o *DetailOverlay) Optimistic() bool { return o.optimistic }

// Membership returns the library membership and whether it is known
func (o *DetailOverlay) Membership() (*models.LibraryMembership, bool) {
	return o.membership, o.membershipKnown
}

// Pending reports whether a mutation is in flight
func (o *DetailOverlay) Pending() bool { return o.pending }
