package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/amaumene/unig/internal/controllers"
	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/utils"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7c5cff"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#909090"))
)

func (c *cli) printJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printGames(heading string, items []models.CatalogItem) error {
	if c.jsonOut {
		return c.printJSON(items)
	}

	fmt.Fprintln(c.out, headingStyle.Render(heading))
	if len(items) == 0 {
		fmt.Fprintln(c.out, mutedStyle.Render("No games found"))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "GENRE", "RELEASED", "RATING", "PRICE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, item := range items {
		t.Row(
			strconv.Itoa(item.ID),
			item.Title,
			item.Genre,
			item.ReleaseDate,
			formatRating(item.Rating),
			fmt.Sprintf("$%.2f", item.Price),
		)
	}
	fmt.Fprintln(c.out, t.Render())
	return nil
}

func (c *cli) printGame(overlay *controllers.OverlaySnapshot, authenticated bool) error {
	if c.jsonOut {
		return c.printJSON(overlay)
	}

	item := overlay.Item
	fmt.Fprintln(c.out, headingStyle.Render(item.Title))
	fmt.Fprintf(c.out, "Genre:    %s\n", item.Genre)
	fmt.Fprintf(c.out, "Released: %s\n", item.ReleaseDate)
	fmt.Fprintf(c.out, "Rating:   %s\n", formatRating(item.Rating))
	fmt.Fprintf(c.out, "Price:    $%.2f\n", item.Price)
	if item.Description != "" {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, lipgloss.NewStyle().Width(80).Render(item.Description))
	}
	fmt.Fprintln(c.out)

	switch {
	case !authenticated:
		fmt.Fprintln(c.out, mutedStyle.Render("Log in to add this game to your library"))
	case overlay.Membership == nil:
		fmt.Fprintln(c.out, "Not in your library")
	default:
		fmt.Fprintf(c.out, "In %s\n", overlay.Membership.Status.Label())
	}
	return nil
}

func (c *cli) printSections(sections []utils.NavSection) error {
	if c.jsonOut {
		return c.printJSON(sections)
	}
	for _, section := range sections {
		fmt.Fprintln(c.out, headingStyle.Render(utils.SectionHeading(section.Label)))
		for _, link := range section.Links {
			fmt.Fprintf(c.out, "  %s\n", link.Label)
		}
	}
	return nil
}

func formatRating(rating *float64) string {
	if rating == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *rating)
}
