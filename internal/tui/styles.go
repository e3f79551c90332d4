package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amaumene/unig/internal/controllers"
)

var (
	colorText    = lipgloss.Color("#ffffff")
	colorMuted   = lipgloss.Color("#909090")
	colorAccent  = lipgloss.Color("#7c5cff")
	colorBorder  = lipgloss.Color("#333333")
	colorSuccess = lipgloss.Color("#4ade80")
	colorWarning = lipgloss.Color("#facc15")
	colorError   = lipgloss.Color("#f87171")
)

// styles holds the pre-built lipgloss styles of the browser
type styles struct {
	Logo       lipgloss.Style
	NavBar     lipgloss.Style
	NavLink    lipgloss.Style
	NavActive  lipgloss.Style
	HeroTitle  lipgloss.Style
	HeroText   lipgloss.Style
	Heading    lipgloss.Style
	Row        lipgloss.Style
	RowCursor  lipgloss.Style
	Muted      lipgloss.Style
	Price      lipgloss.Style
	Rating     lipgloss.Style
	Sidebar    lipgloss.Style
	SideHeader lipgloss.Style
	Box        lipgloss.Style
	BoxTitle   lipgloss.Style
	Input      lipgloss.Style
	InputFocus lipgloss.Style
	Error      lipgloss.Style
	Toast      map[controllers.Level]lipgloss.Style
}

func defaultStyles() styles {
	toast := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	return styles{
		Logo:       lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		NavBar:     lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(colorBorder),
		NavLink:    lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1),
		NavActive:  lipgloss.NewStyle().Foreground(colorText).Background(colorAccent).Padding(0, 1),
		HeroTitle:  lipgloss.NewStyle().Bold(true).Foreground(colorText),
		HeroText:   lipgloss.NewStyle().Foreground(colorMuted),
		Heading:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1),
		Row:        lipgloss.NewStyle().Foreground(colorText).PaddingLeft(2),
		RowCursor:  lipgloss.NewStyle().Foreground(colorAccent).Bold(true).PaddingLeft(2),
		Muted:      lipgloss.NewStyle().Foreground(colorMuted),
		Price:      lipgloss.NewStyle().Foreground(colorSuccess),
		Rating:     lipgloss.NewStyle().Foreground(colorWarning),
		Sidebar:    lipgloss.NewStyle().Width(sidebarWidth).BorderStyle(lipgloss.NormalBorder()).BorderRight(true).BorderForeground(colorBorder),
		SideHeader: lipgloss.NewStyle().Bold(true).Foreground(colorMuted).MarginTop(1),
		Box:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2),
		BoxTitle:   lipgloss.NewStyle().Bold(true).Foreground(colorText).MarginBottom(1),
		Input:      lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorBorder).Padding(0, 1),
		InputFocus: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(colorAccent).Padding(0, 1),
		Error:      lipgloss.NewStyle().Foreground(colorError),
		Toast: map[controllers.Level]lipgloss.Style{
			controllers.LevelInfo:    toast.Foreground(colorMuted),
			controllers.LevelSuccess: toast.Foreground(colorSuccess),
			controllers.LevelWarning: toast.Foreground(colorWarning),
			controllers.LevelError:   toast.Foreground(colorError),
		},
	}
}
