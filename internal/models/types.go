package models

// LibraryKind selects one of the personal library lists
type LibraryKind string

const (
	LibraryOwned    LibraryKind = "my-games"
	LibraryWishlist LibraryKind = "wishlist"
)

// Valid reports whether k names a known library list
func (k LibraryKind) Valid() bool {
	return k == LibraryOwned || k == LibraryWishlist
}

// Title returns the heading used for the list
func (k LibraryKind) Title() string {
	if k == LibraryWishlist {
		return "My Wishlist"
	}
	return "My Collection"
}

// LibraryStatus is the status a game is tracked under in a user's library
type LibraryStatus string

const (
	StatusPlaying    LibraryStatus = "PLAYING"
	StatusPlanToPlay LibraryStatus = "PLAN_TO_PLAY"
	StatusCompleted  LibraryStatus = "COMPLETED"
	StatusDropped    LibraryStatus = "DROPPED"
)

// Label returns the name of the list a status belongs to
func (s LibraryStatus) Label() string {
	if s == StatusPlanToPlay {
		return "Wishlist"
	}
	return "My Games"
}

// FilterMode identifies which field of a FilterSelection is active
type FilterMode int

const (
	ModeNone FilterMode = iota
	ModeSearch
	ModeGenre
	ModePlatform
	ModeLibrary
)

func (m FilterMode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeGenre:
		return "genre"
	case ModePlatform:
		return "platform"
	case ModeLibrary:
		return "library"
	default:
		return "none"
	}
}
