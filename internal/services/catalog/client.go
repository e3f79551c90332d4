package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/services/gateway"
)

const (
	detailRetries   = 2
	cleanupInterval = 10 * time.Minute
)

// Client reads the public game catalog
type Client struct {
	gw         *gateway.Client
	details    *cache.Cache
	newBackOff func() backoff.BackOff
	logger     *logrus.Logger
}

// NewClient creates a catalog client. Game details are cached for detailTTL.
func NewClient(gw *gateway.Client, detailTTL time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		gw:      gw,
		details: cache.New(detailTTL, cleanupInterval),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			return b
		},
		logger: logger,
	}
}

// ListGames returns the default listing
func (c *Client) ListGames(ctx context.Context) ([]models.CatalogItem, error) {
	return c.list(ctx, "list", "/games", nil)
}

// SearchGames returns games matching query. The query is sent verbatim.
func (c *Client) SearchGames(ctx context.Context, query string) ([]models.CatalogItem, error) {
	return c.list(ctx, "search", "/games/search", url.Values{"query": {query}})
}

// GamesByGenre returns the games of one genre
func (c *Client) GamesByGenre(ctx context.Context, genre string) ([]models.CatalogItem, error) {
	return c.list(ctx, "genre", "/games/genre/"+url.PathEscape(genre), nil)
}

// GetGame returns the full record of one game. Transient failures are retried;
// successful answers are cached.
func (c *Client) GetGame(ctx context.Context, id int) (*models.CatalogItem, error) {
	key := strconv.Itoa(id)
	if cached, ok := c.details.Get(key); ok {
		item := cached.(models.CatalogItem)
		return &item, nil
	}

	var item models.CatalogItem
	attempt := 0
	operation := func() error {
		attempt++
		data, err := c.gw.Do(ctx, "detail", http.MethodGet, "/games/"+key, nil, nil)
		if err != nil {
			var gerr *gateway.Error
			if errors.As(err, &gerr) && gerr.Temporary() {
				c.logger.WithFields(logrus.Fields{
					"game_id": id,
					"attempt": attempt,
				}).WithError(err).Debug("Retrying game detail")
				return err
			}
			return backoff.Permanent(err)
		}
		if err := c.gw.Decode("detail", data, &item); err != nil {
			return backoff.Permanent(err)
		}
		if item.ID == 0 {
			return backoff.Permanent(c.gw.DecodeError("detail", "missing id"))
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), detailRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}

	c.details.SetDefault(key, item)
	return &item, nil
}

func (c *Client) list(ctx context.Context, op, path string, query url.Values) ([]models.CatalogItem, error) {
	data, err := c.gw.Do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	items, err := c.parseList(op, data)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"op":    op,
		"count": len(items),
	}).Debug("Fetched catalog page")

	return items, nil
}

// parseList accepts a bare array or an object carrying a results array
func (c *Client) parseList(op string, data []byte) ([]models.CatalogItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, c.gw.DecodeError(op, "empty body")
	}

	switch trimmed[0] {
	case '[':
		var items []models.CatalogItem
		if err := c.gw.Decode(op, trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var envelope struct {
			Results *[]models.CatalogItem `json:"results"`
		}
		if err := c.gw.Decode(op, trimmed, &envelope); err != nil {
			return nil, err
		}
		if envelope.Results == nil {
			return nil, c.gw.DecodeError(op, "object without results")
		}
		return *envelope.Results, nil
	default:
		var probe json.RawMessage
		if err := c.gw.Decode(op, trimmed, &probe); err != nil {
			return nil, err
		}
		return nil, c.gw.DecodeError(op, "expected array or results object")
	}
}
