package memory

import (
	"context"
	"sync"

	"github.com/jobpilot/careers-crawler/internal/scraper"
)

// HistoryStore keeps recent scrape summaries in memory, newest first.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []scraper.HistoryEntry
	cap     int
}

// NewHistoryStore constructs a HistoryStore that retains at most capacity
// entries (10 when capacity is zero).
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = 10
	}
	return &HistoryStore{cap: capacity}
}

// Record prepends the entry, replacing an older entry for the same URL so the
// history shows each careers page once.
func (s *HistoryStore) Record(_ context.Context, entry scraper.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]scraper.HistoryEntry, 0, len(s.entries)+1)
	filtered = append(filtered, entry)
	for _, e := range s.entries {
		if e.CareersURL == entry.CareersURL {
			continue
		}
		filtered = append(filtered, e)
	}
	if len(filtered) > s.cap {
		filtered = filtered[:s.cap]
	}
	s.entries = filtered
	return nil
}

// ListRecent returns up to limit entries, newest first.
func (s *HistoryStore) ListRecent(_ context.Context, limit int) ([]scraper.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]scraper.HistoryEntry, limit)
	copy(out, s.entries[:limit])
	return out, nil
}
