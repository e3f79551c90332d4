// Package tui is the terminal front end of the catalog browser.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/controllers"
	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/utils"
)

const (
	chromeRows   = 3 // nav bar with its border, and the footer
	headingRows  = 2 // catalog heading and the blank line under it
	sidebarWidth = 22
	tickInterval = 250 * time.Millisecond
)

// focus is the part of the screen receiving key presses
type focus int

const (
	focusGrid focus = iota
	focusSearch
	focusNav
	focusForm
)

// Login and signup form fields
const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	fieldCount
)

type tickMsg time.Time

// Model is the bubbletea model of the browser. The screen is one document:
// a hero as tall as the viewport, followed by the catalog heading and one row
// per game. offset is the number of document rows scrolled past.
type Model struct {
	// UI components
	search textinput.Model
	form   []textinput.Model
	help   help.Model
	keys   keyMap
	styles styles

	// State
	focus     focus
	signup    bool
	field     int // index into visibleFields
	cursor    int // -1 while the hero is shown
	offset    int
	navCursor int
	links     []utils.NavLink
	sections  []utils.NavSection
	width     int
	height    int

	// Dependencies
	app    *controllers.App
	logger *logrus.Logger
}

// New creates the browser model over app
func New(app *controllers.App, logger *logrus.Logger) Model {
	search := textinput.New()
	search.Placeholder = "Search games..."
	search.Prompt = "/ "
	search.CharLimit = 256

	form := make([]textinput.Model, fieldCount)
	for i, placeholder := range []string{"Username", "Email", "Password", "Confirm password"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Prompt = ""
		ti.CharLimit = 128
		if i == fieldPassword || i == fieldConfirm {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		form[i] = ti
	}

	sections := utils.DefaultSections()
	var links []utils.NavLink
	for _, section := range sections {
		links = append(links, section.Links...)
	}

	return Model{
		search:   search,
		form:     form,
		help:     help.New(),
		keys:     defaultKeyMap(),
		styles:   defaultStyles(),
		cursor:   -1,
		links:    links,
		sections: sections,
		width:    80,
		height:   24,
		app:      app,
		logger:   logger,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.app.Init(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampOffset()
		return m, m.syncViewport()

	case tickMsg:
		m.app.ExpireNotifications(time.Time(msg))
		return m, tick()

	case controllers.ScrollToCatalogMsg:
		m.cursor = 0
		m.offset = m.heroRows()
		return m, m.syncViewport()

	case controllers.ScrollToTopMsg:
		m.cursor = -1
		m.offset = 0
		return m, m.syncViewport()

	case controllers.LoginDoneMsg:
		cmd := m.app.Update(msg)
		if msg.Err == nil {
			m.closeForm()
		}
		return m, cmd

	case controllers.SignupDoneMsg:
		cmd := m.app.Update(msg)
		if msg.Err == nil && m.focus == focusForm {
			return m, tea.Batch(cmd, m.setSignup(false))
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	cmds := []tea.Cmd{m.app.Update(msg), m.updateInputs(msg)}
	m.clampCursor()
	cmds = append(cmds, m.syncViewport())
	return m, tea.Batch(cmds...)
}

// handleKey dispatches a key press to the focused part of the screen
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusNav:
		return m.handleNavKey(msg)
	case focusForm:
		return m.handleFormKey(msg)
	}
	if m.overlayOpen() {
		return m.handleOverlayKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.bodyRows())
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.bodyRows())
	case key.Matches(msg, m.keys.Dismiss):
		return m, m.app.DismissLatest()
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Nav):
		m.focus = focusNav
		return m, nil
	case key.Matches(msg, m.keys.Open):
		items := m.items()
		if m.cursor >= 0 && m.cursor < len(items) {
			return m, m.app.OpenItem(items[m.cursor].ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Login):
		if !m.app.Session().Authenticated() {
			return m, m.openForm()
		}
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		if m.app.Session().Authenticated() {
			return m, m.app.Logout()
		}
		return m, nil
	case key.Matches(msg, m.keys.Home):
		return m, m.app.ResetToHome()
	default:
		return m, nil
	}
	return m, m.syncViewport()
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Close):
		m.app.CloseItem()
	case key.Matches(msg, m.keys.Wishlist):
		return m, m.app.AddToLibrary(models.StatusPlanToPlay)
	case key.Matches(msg, m.keys.Playing):
		return m, m.app.AddToLibrary(models.StatusPlaying)
	case key.Matches(msg, m.keys.Dismiss):
		return m, m.app.DismissLatest()
	case key.Matches(msg, m.keys.Remove):
		return m, m.app.RemoveFromLibrary()
	case key.Matches(msg, m.keys.Login):
		if !m.app.Session().Authenticated() {
			return m, m.openForm()
		}
	case key.Matches(msg, m.keys.Home):
		return m, m.app.ResetToHome()
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.search.Blur()
		m.focus = focusGrid
		return m, nil
	case key.Matches(msg, m.keys.Open):
		m.search.Blur()
		m.focus = focusGrid
		m.logger.WithField("query", m.search.Value()).Debug("Search submitted")
		return m, m.app.ApplyFilter(models.SearchFor(m.search.Value()))
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleNavKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Nav):
		m.focus = focusGrid
	case key.Matches(msg, m.keys.Up):
		m.navCursor = (m.navCursor - 1 + len(m.links)) % len(m.links)
	case key.Matches(msg, m.keys.Down):
		m.navCursor = (m.navCursor + 1) % len(m.links)
	case key.Matches(msg, m.keys.Open):
		m.focus = focusGrid
		return m, m.app.ApplyNav(m.links[m.navCursor])
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.closeForm()
		return m, nil
	case key.Matches(msg, m.keys.ToggleForm):
		return m, m.setSignup(!m.signup)
	case key.Matches(msg, m.keys.NextField):
		return m, m.focusField(m.field + 1)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.focusField(m.field - 1)
	case key.Matches(msg, m.keys.Open):
		return m, m.submit()
	}

	var cmd tea.Cmd
	idx := m.visibleFields()[m.field]
	m.form[idx], cmd = m.form[idx].Update(msg)
	return m, cmd
}

// updateInputs forwards non-key messages, such as cursor blinks, to the focused input
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
	case focusForm:
		idx := m.visibleFields()[m.field]
		m.form[idx], cmd = m.form[idx].Update(msg)
	}
	return cmd
}

func (m *Model) submit() tea.Cmd {
	if m.signup {
		return m.app.Signup(models.Registration{
			Username:        m.form[fieldUsername].Value(),
			Email:           m.form[fieldEmail].Value(),
			Password:        m.form[fieldPassword].Value(),
			ConfirmPassword: m.form[fieldConfirm].Value(),
		})
	}
	return m.app.Login(models.Credentials{
		Username: m.form[fieldUsername].Value(),
		Password: m.form[fieldPassword].Value(),
	})
}

func (m *Model) visibleFields() []int {
	if m.signup {
		return []int{fieldUsername, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldUsername, fieldPassword}
}

func (m *Model) focusField(i int) tea.Cmd {
	fields := m.visibleFields()
	m.field = (i + len(fields)) % len(fields)
	for j := range m.form {
		m.form[j].Blur()
	}
	return m.form[fields[m.field]].Focus()
}

func (m *Model) openForm() tea.Cmd {
	m.focus = focusForm
	return m.setSignup(false)
}

// setSignup switches the form between login and signup, keeping the username
func (m *Model) setSignup(signup bool) tea.Cmd {
	m.signup = signup
	for _, idx := range []int{fieldEmail, fieldPassword, fieldConfirm} {
		m.form[idx].Reset()
	}
	return m.focusField(0)
}

func (m *Model) closeForm() {
	for i := range m.form {
		m.form[i].Blur()
		m.form[i].Reset()
	}
	m.signup = false
	m.field = 0
	m.focus = focusGrid
}

func (m Model) overlayOpen() bool {
	return m.app.Snapshot().Overlay != nil
}

func (m Model) items() []models.CatalogItem {
	return m.app.Snapshot().Items
}

// bodyRows is the height of the scrolling part of the screen
func (m Model) bodyRows() int {
	return max(m.height-chromeRows, 1)
}

func (m Model) heroRows() int {
	return m.bodyRows()
}

// itemRow is the document row of the i-th game
func (m Model) itemRow(i int) int {
	return m.heroRows() + headingRows + i
}

// move shifts the cursor and scrolls so it stays visible. Moving above the
// first game scrolls back to the hero.
func (m *Model) move(delta int) {
	n := len(m.items())
	m.cursor = min(m.cursor+delta, n-1)
	if m.cursor < 0 {
		m.cursor = -1
		m.offset = 0
		return
	}

	body := m.bodyRows()
	row := m.itemRow(m.cursor)
	switch {
	case m.cursor == 0 || m.offset < m.heroRows():
		m.offset = m.heroRows()
	case row < m.offset:
		m.offset = row
	case row >= m.offset+body:
		m.offset = row - body + 1
	}
}

// clampCursor keeps the cursor on an existing game after the feed changed
func (m *Model) clampCursor() {
	n := len(m.items())
	if n == 0 {
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 && m.offset >= m.heroRows() {
		m.cursor = 0
	}
}

func (m *Model) clampOffset() {
	if m.cursor >= 0 && m.offset < m.heroRows() {
		m.offset = m.heroRows()
	}
}

// syncViewport reports the scroll position and the distance between the last
// game and the bottom of the screen, which may request the next page
func (m Model) syncViewport() tea.Cmd {
	body := m.bodyRows()
	m.app.Scroll(m.offset, body)

	n := len(m.items())
	if n == 0 {
		return nil
	}
	bottom := m.offset + body - 1
	return m.app.ObserveTail(m.itemRow(n-1) - bottom)
}
