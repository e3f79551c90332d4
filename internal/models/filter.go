package models

import (
	"fmt"
	"strings"
)

// FilterSelection describes what the catalog view currently shows.
// Exactly one mode is active; values are built only through the constructors
// below and are never partially mutated.
type FilterSelection struct {
	mode     FilterMode
	text     string // search text or genre
	platform int
	library  LibraryKind
}

// NoFilter selects the default listing
func NoFilter() FilterSelection {
	return FilterSelection{mode: ModeNone}
}

// SearchFor selects a free-text search. Blank text selects the default listing.
func SearchFor(text string) FilterSelection {
	if strings.TrimSpace(text) == "" {
		return NoFilter()
	}
	return FilterSelection{mode: ModeSearch, text: text}
}

// InGenre selects a single genre. A blank genre selects the default listing.
func InGenre(genre string) FilterSelection {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return NoFilter()
	}
	return FilterSelection{mode: ModeGenre, text: genre}
}

// OnPlatform selects a platform
func OnPlatform(id int) FilterSelection {
	return FilterSelection{mode: ModePlatform, platform: id}
}

// FromLibrary selects one of the signed-in user's lists
func FromLibrary(kind LibraryKind) (FilterSelection, error) {
	if !kind.Valid() {
		return FilterSelection{}, fmt.Errorf("unknown library list %q", kind)
	}
	return FilterSelection{mode: ModeLibrary, library: kind}, nil
}

// Mode returns the active mode
func (s FilterSelection) Mode() FilterMode {
	return s.mode
}

// SearchText returns the search text when search mode is active
func (s FilterSelection) SearchText() (string, bool) {
	return s.text, s.mode == ModeSearch
}

// Genre returns the genre when genre mode is active
func (s FilterSelection) Genre() (string, bool) {
	return s.text, s.mode == ModeGenre
}

// Platform returns the platform id when platform mode is active
func (s FilterSelection) Platform() (int, bool) {
	return s.platform, s.mode == ModePlatform
}

// Library returns the library list when library mode is active
func (s FilterSelection) Library() (LibraryKind, bool) {
	return s.library, s.mode == ModeLibrary
}

// Equal reports whether both selections have the same mode and value
func (s FilterSelection) Equal(other FilterSelection) bool {
	return s == other
}

// Heading returns the title shown above the grid
func (s FilterSelection) Heading() string {
	switch s.mode {
	case ModeLibrary:
		return s.library.Title()
	case ModeSearch:
		return fmt.Sprintf("Search Results: %q", s.text)
	case ModeGenre:
		return fmt.Sprintf("Genre: %s", s.text)
	default:
		return "Top Games"
	}
}

func (s FilterSelection) String() string {
	switch s.mode {
	case ModeSearch, ModeGenre:
		return fmt.Sprintf("%s:%s", s.mode, s.text)
	case ModePlatform:
		return fmt.Sprintf("%s:%d", s.mode, s.platform)
	case ModeLibrary:
		return fmt.Sprintf("%s:%s", s.mode, s.library)
	default:
		return s.mode.String()
	}
}
