package account

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/services/gateway"
)

// DefaultPrice is shown for library entries saved without a price
const DefaultPrice = 59.99

// addedAtLayout matches the server's zone-less timestamps
const addedAtLayout = "2006-01-02T15:04:05"

// LibraryClient manages the signed-in user's library. Requests carry the
// bearer token of the gateway's token source.
type LibraryClient struct {
	gw     *gateway.Client
	logger *logrus.Logger
}

// NewLibraryClient creates a library client
func NewLibraryClient(gw *gateway.Client, logger *logrus.Logger) *LibraryClient {
	return &LibraryClient{gw: gw, logger: logger}
}

// userGame is a library entry as stored by the account API
type userGame struct {
	ID              int64                `json:"id,omitempty"`
	GameID          int                  `json:"gameId"`
	Title           string               `json:"title"`
	BackgroundImage string               `json:"backgroundImage"`
	RawgRating      *float64             `json:"rawgRating"`
	Description     string               `json:"description"`
	Price           *float64             `json:"price"`
	Genre           string               `json:"genre"`
	ReleaseDate     string               `json:"releaseDate"`
	Status          models.LibraryStatus `json:"status"`
	AddedAt         string               `json:"addedAt,omitempty"`
}

// newUserGame builds the snapshot posted when adding item
func newUserGame(item models.CatalogItem, status models.LibraryStatus) userGame {
	price := item.Price
	return userGame{
		GameID:          item.ID,
		Title:           item.Title,
		BackgroundImage: item.ImageURL,
		RawgRating:      item.Rating,
		Description:     item.Description,
		Price:           &price,
		Genre:           item.Genre,
		ReleaseDate:     item.ReleaseDate,
		Status:          status,
	}
}

// toCatalogItem maps a library entry onto the catalog shape
func (g userGame) toCatalogItem() models.CatalogItem {
	price := DefaultPrice
	if g.Price != nil && *g.Price != 0 {
		price = *g.Price
	}
	return models.CatalogItem{
		ID:          g.GameID,
		Title:       g.Title,
		Description: g.Description,
		Price:       price,
		ImageURL:    g.BackgroundImage,
		Rating:      g.RawgRating,
		ReleaseDate: g.ReleaseDate,
		Genre:       g.Genre,
	}
}

func (g userGame) toMembership() *models.LibraryMembership {
	return &models.LibraryMembership{
		GameID:  g.GameID,
		Status:  g.Status,
		AddedAt: parseAddedAt(g.AddedAt),
	}
}

func parseAddedAt(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, addedAtLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// CheckGame returns the user's membership for gameID, or nil when the game is
// not in the library
func (c *LibraryClient) CheckGame(ctx context.Context, gameID int) (*models.LibraryMembership, error) {
	data, err := c.gw.Do(ctx, "check", http.MethodGet, "/games/"+strconv.Itoa(gameID)+"/check", nil, nil)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entry userGame
	if err := c.gw.Decode("check", data, &entry); err != nil {
		return nil, err
	}
	return entry.toMembership(), nil
}

// AddGame stores a snapshot of item under status
func (c *LibraryClient) AddGame(ctx context.Context, item models.CatalogItem, status models.LibraryStatus) (*models.LibraryMembership, error) {
	data, err := c.gw.Do(ctx, "add", http.MethodPost, "/games", nil, newUserGame(item, status))
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"game_id": item.ID,
		"status":  status,
	}).Info("Game added to library")

	if len(bytes.TrimSpace(data)) == 0 {
		return &models.LibraryMembership{GameID: item.ID, Status: status}, nil
	}

	var entry userGame
	if err := c.gw.Decode("add", data, &entry); err != nil {
		return nil, err
	}
	if entry.GameID == 0 {
		entry.GameID = item.ID
	}
	if entry.Status == "" {
		entry.Status = status
	}
	return entry.toMembership(), nil
}

// RemoveGame deletes gameID from the library
func (c *LibraryClient) RemoveGame(ctx context.Context, gameID int) error {
	if _, err := c.gw.Do(ctx, "remove", http.MethodDelete, "/games/"+strconv.Itoa(gameID), nil, nil); err != nil {
		return err
	}
	c.logger.WithField("game_id", gameID).Info("Game removed from library")
	return nil
}

// Library returns one of the user's lists mapped onto catalog items
func (c *LibraryClient) Library(ctx context.Context, kind models.LibraryKind) ([]models.CatalogItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown library list %q", kind)
	}

	op := "library_" + string(kind)
	data, err := c.gw.Do(ctx, op, http.MethodGet, "/games/"+string(kind), nil, nil)
	if err != nil {
		return nil, err
	}

	var entries []userGame
	if err := c.gw.Decode(op, data, &entries); err != nil {
		return nil, err
	}

	items := make([]models.CatalogItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, entry.toCatalogItem())
	}
	return items, nil
}
