package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amaumene/unig/internal/controllers"
	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/utils"
)

const titleWidth = 40

// View implements tea.Model.
func (m Model) View() string {
	snap := m.app.Snapshot()

	var body string
	switch {
	case m.focus == focusForm:
		body = m.place(m.renderForm())
	case snap.Overlay != nil:
		body = m.place(m.renderOverlay(snap))
	case m.focus == focusNav && !snap.Compact:
		body = m.renderMenu(snap)
	default:
		body = m.renderDocument(snap)
	}
	if snap.Compact && snap.Overlay == nil && m.focus != focusForm {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.styles.Sidebar.Render(m.renderMenu(snap)), body)
	}
	body = lipgloss.NewStyle().Height(m.bodyRows()).MaxHeight(m.bodyRows()).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderNavBar(snap), body, m.renderFooter(snap))
}

func (m Model) place(content string) string {
	return lipgloss.Place(m.width, m.bodyRows(), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderNavBar(snap *controllers.Snapshot) string {
	parts := []string{m.styles.Logo.Render("UNIG")}
	if snap.Compact {
		parts = append(parts, m.styles.NavLink.Render("≡ "+snap.Heading))
	} else {
		for _, section := range m.sections {
			style := m.styles.NavLink
			if m.sectionActive(section, snap) {
				style = m.styles.NavActive
			}
			parts = append(parts, style.Render(section.Label))
		}
	}

	user := m.styles.Muted.Render("l: login")
	if snap.User != nil {
		user = m.styles.Muted.Render(snap.User.Username + " · o: logout")
	}

	left := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(user), 1)
	return m.styles.NavBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + user)
}

func (m Model) sectionActive(section utils.NavSection, snap *controllers.Snapshot) bool {
	for _, link := range section.Links {
		if sel, err := link.Selection(); err == nil && sel.String() == snap.Filter {
			return true
		}
	}
	return false
}

// renderMenu lists the navigation sections, used as dropdown and as sidebar
func (m Model) renderMenu(snap *controllers.Snapshot) string {
	var b strings.Builder
	i := 0
	for _, section := range m.sections {
		b.WriteString(m.styles.SideHeader.Render(utils.SectionHeading(section.Label)))
		b.WriteString("\n")
		for _, link := range section.Links {
			style := m.styles.NavLink
			if m.focus == focusNav && i == m.navCursor {
				style = m.styles.NavActive
			} else if sel, err := link.Selection(); err == nil && sel.String() == snap.Filter {
				style = m.styles.RowCursor
			}
			b.WriteString(style.Render(link.Label))
			b.WriteString("\n")
			i++
		}
	}
	return b.String()
}

// renderDocument renders the rows of the document visible at the current offset
func (m Model) renderDocument(snap *controllers.Snapshot) string {
	lines := m.heroLines()
	lines = append(lines, m.styles.Heading.UnsetMarginBottom().Render(snap.Heading), "")
	for i, item := range snap.Items {
		lines = append(lines, m.renderRow(i, item))
	}

	switch snap.FeedState {
	case "loading":
		lines = append(lines, m.styles.Muted.Render("  Loading..."))
	case "failed":
		lines = append(lines, m.styles.Error.Render("  Could not load games"))
	case "loaded":
		if len(snap.Items) == 0 {
			lines = append(lines, m.styles.Muted.Render("  No games found"))
		}
	}

	start := min(m.offset, len(lines))
	end := min(start+m.bodyRows(), len(lines))
	return strings.Join(lines[start:end], "\n")
}

// heroLines renders the hero padded to exactly heroRows lines
func (m Model) heroLines() []string {
	search := m.styles.Input
	if m.focus == focusSearch {
		search = m.styles.InputFocus
	}
	hero := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.HeroTitle.Render("Discover your next favorite game"),
		m.styles.HeroText.Render("Browse the catalog, build your wishlist and track what you play."),
		"",
		search.Width(min(60, max(m.width-4, 10))).Render(m.search.View()),
	)
	hero = lipgloss.Place(m.width, m.heroRows(), lipgloss.Center, lipgloss.Center, hero)

	lines := strings.Split(hero, "\n")
	if len(lines) > m.heroRows() {
		lines = lines[:m.heroRows()]
	}
	for len(lines) < m.heroRows() {
		lines = append(lines, "")
	}
	return lines
}

func (m Model) renderRow(i int, item models.CatalogItem) string {
	style := m.styles.Row
	marker := "  "
	if i == m.cursor {
		style = m.styles.RowCursor
		marker = "> "
	}
	return style.Render(fmt.Sprintf("%s%-*s %-12s %s %s",
		marker,
		titleWidth, truncate(item.Title, titleWidth),
		truncate(item.Genre, 12),
		m.styles.Rating.Render(formatRating(item.Rating)),
		m.styles.Price.Render(fmt.Sprintf("$%.2f", item.Price)),
	))
}

func (m Model) renderOverlay(snap *controllers.Snapshot) string {
	o := snap.Overlay
	width := min(80, max(m.width-8, 20))

	var b strings.Builder
	if o.Item == nil {
		b.WriteString(m.styles.BoxTitle.Render(fmt.Sprintf("Game #%d", o.GameID)))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("Loading..."))
	} else {
		item := o.Item
		b.WriteString(m.styles.BoxTitle.Render(item.Title))
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%s · %s", item.Genre, item.ReleaseDate)))
		b.WriteString("\n")
		b.WriteString(m.styles.Rating.Render(formatRating(item.Rating)) + "  " + m.styles.Price.Render(fmt.Sprintf("$%.2f", item.Price)))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Width(width - 6).Render(item.Description))
		if o.Optimistic {
			b.WriteString("\n")
			b.WriteString(m.styles.Muted.Render("Loading details..."))
		}
	}
	b.WriteString("\n\n")

	switch {
	case snap.User == nil:
		b.WriteString(m.styles.Muted.Render("Log in (l) to add this game to your library"))
	case !o.MembershipKnown:
		b.WriteString(m.styles.Muted.Render("Checking your library..."))
	case o.Membership == nil:
		b.WriteString(m.styles.Muted.Render("Not in your library"))
	default:
		b.WriteString(m.styles.Price.Render("In " + o.Membership.Status.Label()))
	}

	if o.Pending {
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("Saving..."))
	} else if len(o.Actions) > 0 {
		labels := make([]string, 0, len(o.Actions))
		for _, action := range o.Actions {
			labels = append(labels, actionLabel(action))
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(labels, "   "))
	}

	return m.styles.Box.Width(width).Render(b.String())
}

func actionLabel(action controllers.Action) string {
	switch action {
	case controllers.ActionWishlist:
		return "[w] Add to Wishlist"
	case controllers.ActionPlaying:
		return "[p] Add to My Games"
	case controllers.ActionRemove:
		return "[x] Remove from Library"
	default:
		return string(action)
	}
}

func (m Model) renderForm() string {
	title, hint := "Login", "ctrl+t: create an account"
	if m.signup {
		title, hint = "Sign Up", "ctrl+t: back to login"
	}

	rows := []string{m.styles.BoxTitle.Render(title)}
	for i, idx := range m.visibleFields() {
		style := m.styles.Input
		if i == m.field {
			style = m.styles.InputFocus
		}
		rows = append(rows, style.Width(36).Render(m.form[idx].View()))
	}
	rows = append(rows, "", m.styles.Muted.Render(hint))

	return m.styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderFooter shows the latest notification, or the key help
func (m Model) renderFooter(snap *controllers.Snapshot) string {
	if n := len(snap.Notifications); n > 0 {
		note := snap.Notifications[n-1]
		text := note.Title
		if note.Detail != "" {
			text += ": " + note.Detail
		}
		return m.styles.Toast[note.Level].Render(text)
	}

	switch {
	case m.focus == focusForm:
		return m.help.ShortHelpView(m.keys.formHelp())
	case snap.Overlay != nil:
		return m.help.ShortHelpView(m.keys.overlayHelp())
	default:
		return m.help.View(m.keys)
	}
}

func formatRating(rating *float64) string {
	if rating == nil {
		return "★  -  "
	}
	return fmt.Sprintf("★ %.1f", *rating)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
