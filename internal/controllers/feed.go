package controllers

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/telemetry"
)

// FeedState is the lifecycle state of the catalog feed
type FeedState int

const (
	FeedIdle FeedState = iota
	FeedLoading
	FeedLoaded
	FeedFailed
)

func (s FeedState) String() string {
	switch s {
	case FeedLoading:
		return "loading"
	case FeedLoaded:
		return "loaded"
	case FeedFailed:
		return "failed"
	default:
		return "idle"
	}
}

// feedTransitions lists the legal state changes
var feedTransitions = map[FeedState][]FeedState{
	FeedIdle:    {FeedLoading},
	FeedLoading: {FeedLoading, FeedLoaded, FeedFailed},
	FeedLoaded:  {FeedLoading},
	FeedFailed:  {FeedLoading},
}

// CatalogFeed accumulates the pages of the current selection
type CatalogFeed struct {
	ctx     context.Context
	catalog CatalogSource
	library LibrarySource
	metrics *telemetry.Metrics
	logger  *logrus.Logger

	state      FeedState
	selection  models.FilterSelection
	generation uint64
	page       int
	hasMore    bool
	items      []models.CatalogItem
	err        error
}

// NewCatalogFeed creates an idle feed for the default listing
func NewCatalogFeed(ctx context.Context, catalog CatalogSource, library LibrarySource, metrics *telemetry.Metrics, logger *logrus.Logger) *CatalogFeed {
	return &CatalogFeed{
		ctx:       ctx,
		catalog:   catalog,
		library:   library,
		metrics:   metrics,
		logger:    logger,
		state:     FeedIdle,
		selection: models.NoFilter(),
		page:      1,
		hasMore:   true,
	}
}

// Reset drops the accumulated items and starts loading page 1 of sel.
// Completions of earlier fetches become stale.
func (f *CatalogFeed) Reset(sel models.FilterSelection) tea.Cmd {
	f.selection = sel
	f.items = nil
	f.page = 1
	f.hasMore = true
	f.err = nil
	f.generation++
	f.transition(FeedLoading)
	return f.fetch(f.generation, f.page, sel)
}

// Advance requests the next page when one may exist and no load is running
func (f *CatalogFeed) Advance() tea.Cmd {
	if !f.hasMore {
		return nil
	}
	switch f.state {
	case FeedIdle:
		f.page = 1
	case FeedLoaded:
		f.page++
	default:
		return nil
	}
	f.transition(FeedLoading)
	return f.fetch(f.generation, f.page, f.selection)
}

// Complete applies a finished fetch and reports whether it was current
func (f *CatalogFeed) Complete(msg FeedLoadedMsg) bool {
	if msg.Generation != f.generation || msg.Page != f.page || f.state != FeedLoading {
		f.metrics.StaleCompletion("feed")
		f.logger.WithFields(logrus.Fields{
			"generation":     msg.Generation,
			"current":        f.generation,
			"page":           msg.Page,
			"selection":      msg.Selection.String(),
			"feed_state":     f.state.String(),
			"discarded_rows": len(msg.Items),
		}).Debug("Discarding stale feed completion")
		return false
	}

	if msg.Err != nil {
		f.err = fmt.Errorf("failed to load games: %w", msg.Err)
		f.transition(FeedFailed)
		f.logger.WithError(msg.Err).WithField("selection", f.selection.String()).Warn("Feed load failed")
		return true
	}

	_, library := f.selection.Library()
	if f.page == 1 || library {
		f.items = append([]models.CatalogItem(nil), msg.Items...)
	} else {
		f.items = appendNew(f.items, msg.Items)
	}

	// Pagination is disabled upstream; every route answers in one page.
	f.hasMore = false
	f.transition(FeedLoaded)

	f.logger.WithFields(logrus.Fields{
		"selection": f.selection.String(),
		"page":      f.page,
		"count":     len(f.items),
	}).Debug("Feed loaded")
	return true
}

func (f *CatalogFeed) transition(to FeedState) {
	for _, allowed := range feedTransitions[f.state] {
		if allowed == to {
			f.state = to
			return
		}
	}
	panic(fmt.Sprintf("illegal feed transition %s -> %s", f.state, to))
}

func (f *CatalogFeed) fetch(generation uint64, page int, sel models.FilterSelection) tea.Cmd {
	ctx := f.ctx
	return func() tea.Msg {
		items, err := f.route(ctx, sel)
		return FeedLoadedMsg{
			Generation: generation,
			Page:       page,
			Selection:  sel,
			Items:      items,
			Err:        err,
		}
	}
}

// route picks the endpoint for sel. The platform id is never sent upstream.
func (f *CatalogFeed) route(ctx context.Context, sel models.FilterSelection) ([]models.CatalogItem, error) {
	if kind, ok := sel.Library(); ok {
		if f.library == nil {
			return nil, fmt.Errorf("library unavailable")
		}
		return f.library.Library(ctx, kind)
	}
	if text, ok := sel.SearchText(); ok {
		return f.catalog.SearchGames(ctx, text)
	}
	if genre, ok := sel.Genre(); ok {
		return f.catalog.GamesByGenre(ctx, genre)
	}
	return f.catalog.ListGames(ctx)
}

// Find returns the accumulated item with id
func (f *CatalogFeed) Find(id int) *models.CatalogItem {
	for i := range f.items {
		if f.items[i].ID == id {
			item := f.items[i]
			return &item
		}
	}
	return nil
}

// State returns the lifecycle state
func (f *CatalogFeed) State() FeedState { return f.state }

// Selection returns the selection being shown
func (f *CatalogFeed) Selection() models.FilterSelection { return f.selection }

// Generation returns the current fetch generation
func (f *CatalogFeed) Generation() uint64 { return f.generation }

// Page returns the last requested page
func (f *CatalogFeed) Page() int { return f.page }

// HasMore reports whether another page may be requested
func (f *CatalogFeed) HasMore() bool { return f.hasMore }

// Err returns the load failure, if any
func (f *CatalogFeed) Err() error { return f.err }

// Items returns a copy of the accumulated items
func (f *CatalogFeed) Items() []models.CatalogItem {
	return append([]models.CatalogItem(nil), f.items...)
}

func appendNew(items, page []models.CatalogItem) []models.CatalogItem {
	seen := make(map[int]struct{}, len(items))
	for _, item := range items {
		seen[item.ID] = struct{}{}
	}
	for _, item := range page {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items
}
