package controllers

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/models"
)

// FilterState holds the single active selection shared by the search box,
// the nav menus and the grid
type FilterState struct {
	current  models.FilterSelection
	revision uint64

	feed    *CatalogFeed
	session SessionReader
	notes   *Notifications
	logger  *logrus.Logger
}

// NewFilterState creates a filter state showing the default listing
func NewFilterState(feed *CatalogFeed, session SessionReader, notes *Notifications, logger *logrus.Logger) *FilterState {
	return &FilterState{
		current: models.NoFilter(),
		feed:    feed,
		session: session,
		notes:   notes,
		logger:  logger,
	}
}

// Apply replaces the selection, resets the feed and asks the view to bring
// the grid into view. Library lists require a session.
func (s *FilterState) Apply(sel models.FilterSelection) tea.Cmd {
	if _, library := sel.Library(); library && !s.session.Authenticated() {
		s.notes.Push(LevelWarning, "Please login first", "Log in to see your library")
		return nil
	}
	return tea.Batch(s.replace(sel), emit(ScrollToCatalogMsg{}))
}

// Clear returns to the default listing and scrolls back to the top
func (s *FilterState) Clear() tea.Cmd {
	return tea.Batch(s.replace(models.NoFilter()), emit(ScrollToTopMsg{}))
}

func (s *FilterState) replace(sel models.FilterSelection) tea.Cmd {
	reapplied := sel.Equal(s.current)
	s.current = sel
	s.revision++

	s.logger.WithFields(logrus.Fields{
		"selection": sel.String(),
		"revision":  s.revision,
		"reapplied": reapplied,
	}).Debug("Filter applied")

	return s.feed.Reset(sel)
}

// Current returns the active selection
func (s *FilterState) Current() models.FilterSelection {
	return s.current
}

// Revision increases on every apply, including re-applying an equal selection
func (s *FilterState) Revision() uint64 {
	return s.revision
}
