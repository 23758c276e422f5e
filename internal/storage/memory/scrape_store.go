package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jobpilot/careers-crawler/internal/scraper"
)

// ErrNotFound signals a missing scrape or result.
var ErrNotFound = errors.New("scrape not found")

// ScrapeStore provides an in-memory implementation for development/testing.
type ScrapeStore struct {
	mu      sync.RWMutex
	scrapes map[string]scraper.ScrapeRecord
	results map[string]scraper.ResultDocument
}

// NewScrapeStore constructs a ScrapeStore.
func NewScrapeStore() *ScrapeStore {
	return &ScrapeStore{
		scrapes: make(map[string]scraper.ScrapeRecord),
		results: make(map[string]scraper.ResultDocument),
	}
}

// CreateScrape stores a new scrape request in queued status.
func (s *ScrapeStore) CreateScrape(_ context.Context, rec scraper.ScrapeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.scrapes[rec.ID]; exists {
		return errors.New("scrape already exists")
	}
	s.scrapes[rec.ID] = rec
	return nil
}

// UpdateScrapeStatus updates lifecycle state, stamping started/finished times.
func (s *ScrapeStore) UpdateScrapeStatus(_ context.Context, scrapeID string, status scraper.RecordStatus, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.scrapes[scrapeID]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	rec.ErrorText = errText
	now := time.Now().UTC()
	if status == scraper.RecordRunning && rec.Started == nil {
		rec.Started = pointerTime(now)
	}
	if isTerminal(status) {
		rec.Finished = pointerTime(now)
	}
	s.scrapes[scrapeID] = rec
	return nil
}

// SaveResult stores the finished document for a scrape.
func (s *ScrapeStore) SaveResult(_ context.Context, scrapeID string, doc scraper.ResultDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scrapes[scrapeID]; !ok {
		return ErrNotFound
	}
	s.results[scrapeID] = doc
	return nil
}

// GetScrape fetches a scrape record by ID.
func (s *ScrapeStore) GetScrape(_ context.Context, scrapeID string) (scraper.ScrapeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.scrapes[scrapeID]
	if !ok {
		return scraper.ScrapeRecord{}, ErrNotFound
	}
	return rec, nil
}

// GetResult fetches the finished document for a scrape.
func (s *ScrapeStore) GetResult(_ context.Context, scrapeID string) (scraper.ResultDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.results[scrapeID]
	if !ok {
		return scraper.ResultDocument{}, ErrNotFound
	}
	return doc, nil
}

func pointerTime(t time.Time) *time.Time {
	ts := t
	return &ts
}

func isTerminal(status scraper.RecordStatus) bool {
	switch status {
	case scraper.RecordSucceeded, scraper.RecordFailed:
		return true
	default:
		return false
	}
}
