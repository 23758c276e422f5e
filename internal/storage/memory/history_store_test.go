package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jobpilot/careers-crawler/internal/scraper"
)

func TestHistoryStoreNewestFirst(t *testing.T) {
	t.Parallel()

	store := NewHistoryStore(10)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(ctx, scraper.HistoryEntry{
			ScrapeID:   fmt.Sprintf("scrape-%d", i),
			CareersURL: fmt.Sprintf("https://co%d.com/careers", i),
			CreatedAt:  time.Now().UTC(),
		}))
	}

	entries, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "scrape-2", entries[0].ScrapeID)
	require.Equal(t, "scrape-0", entries[2].ScrapeID)
}

func TestHistoryStoreDedupsByURL(t *testing.T) {
	t.Parallel()

	store := NewHistoryStore(10)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, scraper.HistoryEntry{ScrapeID: "old", CareersURL: "https://acme.com/careers"}))
	require.NoError(t, store.Record(ctx, scraper.HistoryEntry{ScrapeID: "other", CareersURL: "https://globex.com/careers"}))
	require.NoError(t, store.Record(ctx, scraper.HistoryEntry{ScrapeID: "new", CareersURL: "https://acme.com/careers"}))

	entries, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "new", entries[0].ScrapeID)
	require.Equal(t, "other", entries[1].ScrapeID)
}

func TestHistoryStoreCapped(t *testing.T) {
	t.Parallel()

	store := NewHistoryStore(10)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		require.NoError(t, store.Record(ctx, scraper.HistoryEntry{
			ScrapeID:   fmt.Sprintf("scrape-%d", i),
			CareersURL: fmt.Sprintf("https://co%d.com/careers", i),
		}))
	}
	entries, err := store.ListRecent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	require.Equal(t, "scrape-14", entries[0].ScrapeID)
}
