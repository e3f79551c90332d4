package utils

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/amaumene/unig/internal/models"
)

// maxLabelDistance is the largest edit distance accepted when resolving a label
const maxLabelDistance = 3

// NavKind is what a navigation entry selects
type NavKind string

const (
	NavLibrary  NavKind = "library"
	NavGenre    NavKind = "genre"
	NavSearch   NavKind = "search"
	NavPlatform NavKind = "platform"
)

// NavLink is one entry of the navigation menus
type NavLink struct {
	Label string
	Kind  NavKind
	Value string
}

// NavSection groups navigation entries under a heading
type NavSection struct {
	Label string
	Links []NavLink
}

// DefaultSections returns the menus shown in the nav bar and the sidebar
func DefaultSections() []NavSection {
	return []NavSection{
		{
			Label: "Library",
			Links: []NavLink{
				{Label: "My Games", Kind: NavLibrary, Value: string(models.LibraryOwned)},
				{Label: "Wishlist", Kind: NavLibrary, Value: string(models.LibraryWishlist)},
			},
		},
		{
			Label: "Genres",
			Links: []NavLink{
				{Label: "Action", Kind: NavGenre, Value: "Action"},
				{Label: "RPG", Kind: NavGenre, Value: "RPG"},
				{Label: "Adventure", Kind: NavGenre, Value: "Adventure"},
			},
		},
		{
			Label: "Top Games",
			Links: []NavLink{
				{Label: "GTA V", Kind: NavSearch, Value: "Grand Theft Auto V"},
				{Label: "Cyberpunk", Kind: NavSearch, Value: "Cyberpunk 2077"},
				{Label: "Elden Ring", Kind: NavSearch, Value: "Elden Ring"},
			},
		},
	}
}

// Selection converts the entry into a filter selection
func (l NavLink) Selection() (models.FilterSelection, error) {
	switch l.Kind {
	case NavLibrary:
		return models.FromLibrary(models.LibraryKind(l.Value))
	case NavGenre:
		return models.InGenre(l.Value), nil
	case NavSearch:
		return models.SearchFor(l.Value), nil
	case NavPlatform:
		var id int
		if _, err := fmt.Sscanf(l.Value, "%d", &id); err != nil {
			return models.FilterSelection{}, fmt.Errorf("invalid platform id %q: %w", l.Value, err)
		}
		return models.OnPlatform(id), nil
	default:
		return models.FilterSelection{}, fmt.Errorf("unknown navigation kind %q", l.Kind)
	}
}

// SectionHeading returns the upper-cased heading used by the sidebar
func SectionHeading(label string) string {
	return cases.Upper(language.English).String(label)
}

// ResolveLink finds the entry whose label best matches label. Case is
// ignored; small typos are tolerated.
func ResolveLink(sections []NavSection, label string) (NavLink, error) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(label))
	if want == "" {
		return NavLink{}, fmt.Errorf("empty navigation label")
	}

	var best NavLink
	bestDistance := maxLabelDistance + 1
	for _, section := range sections {
		for _, link := range section.Links {
			got := fold.String(link.Label)
			if got == want {
				return link, nil
			}
			if d := levenshtein.ComputeDistance(want, got); d < bestDistance {
				best, bestDistance = link, d
			}
		}
	}

	if bestDistance > maxLabelDistance {
		return NavLink{}, fmt.Errorf("no navigation entry matches %q", label)
	}
	return best, nil
}
