package controllers

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/unig/internal/models"
	"github.com/amaumene/unig/internal/telemetry"
	"github.com/amaumene/unig/internal/utils"
)

func newTestFeed(catalog *fakeCatalog, library *fakeLibrary) *CatalogFeed {
	return NewCatalogFeed(context.Background(), catalog, library, nil, utils.NewDiscardLogger())
}

func TestCatalogFeed_AdvanceFromIdle(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.lists["list"] = games(1, 2)
	feed := newTestFeed(catalog, newFakeLibrary())

	assert.Equal(t, FeedIdle, feed.State())
	cmd := feed.Advance()
	require.NotNil(t, cmd)
	assert.Equal(t, FeedLoading, feed.State())
	assert.Nil(t, feed.Advance(), "no second request while loading")

	msg := cmd().(FeedLoadedMsg)
	assert.Equal(t, 1, msg.Page)
	assert.True(t, feed.Complete(msg))
	assert.Equal(t, FeedLoaded, feed.State())
	assert.Len(t, feed.Items(), 2)
	assert.False(t, feed.HasMore())
	assert.Nil(t, feed.Advance())
}

func TestCatalogFeed_RoutesSelections(t *testing.T) {
	catalog := newFakeCatalog()
	library := newFakeLibrary()
	feed := newTestFeed(catalog, library)

	wishlist, err := models.FromLibrary(models.LibraryWishlist)
	require.NoError(t, err)

	for _, sel := range []models.FilterSelection{
		models.NoFilter(),
		models.SearchFor("Elden Ring"),
		models.InGenre("Adventure"),
		models.OnPlatform(187),
		wishlist,
	} {
		feed.Complete(feed.Reset(sel)().(FeedLoadedMsg))
	}

	assert.Equal(t, []string{"list", "search:Elden Ring", "genre:Adventure", "list"}, catalog.Calls())
	assert.Equal(t, []string{"library:wishlist"}, library.Calls())
}

func TestCatalogFeed_CompleteRejectsWrongPage(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)
	catalog := newFakeCatalog()
	feed := NewCatalogFeed(context.Background(), catalog, nil, metrics, utils.NewDiscardLogger())

	msg := feed.Reset(models.NoFilter())().(FeedLoadedMsg)
	msg.Page = 2
	assert.False(t, feed.Complete(msg))
	assert.Equal(t, FeedLoading, feed.State())

	msg.Page = 1
	assert.True(t, feed.Complete(msg))
	assert.False(t, feed.Complete(msg), "a completion applies once")

	expected := `
# HELP unig_stale_completions_total Completions discarded because a newer request superseded them.
# TYPE unig_stale_completions_total counter
unig_stale_completions_total{component="feed"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "unig_stale_completions_total"))
}

func TestCatalogFeed_LibraryWithoutSource(t *testing.T) {
	feed := NewCatalogFeed(context.Background(), newFakeCatalog(), nil, nil, utils.NewDiscardLogger())

	owned, _ := models.FromLibrary(models.LibraryOwned)
	msg := feed.Reset(owned)().(FeedLoadedMsg)
	assert.Error(t, msg.Err)
	feed.Complete(msg)
	assert.Equal(t, FeedFailed, feed.State())
}

func TestAppendNewDropsDuplicates(t *testing.T) {
	items := appendNew(games(1, 2), games(2, 3, 3, 4))
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
}

func TestFeedTransitionsAreChecked(t *testing.T) {
	feed := NewCatalogFeed(context.Background(), newFakeCatalog(), nil, nil, utils.NewDiscardLogger())
	assert.Panics(t, func() { feed.transition(FeedLoaded) })
}
