package models

import "time"

// CatalogItem is a game record from the public catalog
type CatalogItem struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	Rating      *float64 `json:"rating,omitempty"` // Externally sourced, may be absent
	ReleaseDate string   `json:"releaseDate"`      // YYYY-MM-DD
	Genre       string   `json:"genre"`
}

// LibraryMembership records that the signed-in user tracks a game
type LibraryMembership struct {
	GameID  int           `json:"gameId"`
	Status  LibraryStatus `json:"status"`
	AddedAt *time.Time    `json:"addedAt,omitempty"`
}

// User is the minimal identity returned by the account API
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// SessionIdentity is an authenticated session
type SessionIdentity struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
