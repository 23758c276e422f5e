package scraper

import (
	"context"
	"io"
	"time"
)

// Fetcher fetches a URL and returns the rendered page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (RenderedPage, error)
}

// HeadlessDetector decides whether a probe response warrants a headless fetch.
type HeadlessDetector interface {
	ShouldPromote(page RenderedPage) bool
}

// SessionResource is implemented by fetchers backed by a scarce resource
// (a browser slot). The engine acquires it once per session and releases it
// on every exit path.
type SessionResource interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// Hasher computes digests for deduplication.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Pauser abstracts how the engine waits between fetches and retry attempts.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

// ScrapeStore persists scrape request metadata and finished documents.
type ScrapeStore interface {
	CreateScrape(ctx context.Context, rec ScrapeRecord) error
	UpdateScrapeStatus(ctx context.Context, scrapeID string, status RecordStatus, errText string) error
	SaveResult(ctx context.Context, scrapeID string, doc ResultDocument) error
	GetScrape(ctx context.Context, scrapeID string) (ScrapeRecord, error)
	GetResult(ctx context.Context, scrapeID string) (ResultDocument, error)
}

// BlobStore archives serialized result documents and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// Publisher pushes scrape-completed events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// HistoryStore records one summary row per completed scrape.
type HistoryStore interface {
	Record(ctx context.Context, entry HistoryEntry) error
	ListRecent(ctx context.Context, limit int) ([]HistoryEntry, error)
}

// Queue provides enqueue/dequeue semantics for scrape requests.
type Queue interface {
	Enqueue(ctx context.Context, item QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// IDGenerator produces scrape IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}

// QueueItem wraps a scrape request ready to run.
type QueueItem struct {
	ScrapeID  string
	URL       string
	Submitted int64
}

// RecordStatus is the lifecycle state of a queued scrape request.
type RecordStatus string

// Record status values persisted in the scrape store.
const (
	RecordQueued    RecordStatus = "queued"
	RecordRunning   RecordStatus = "running"
	RecordSucceeded RecordStatus = "succeeded"
	RecordFailed    RecordStatus = "failed"
)

// ScrapeRecord is the metadata persisted for each submitted scrape request.
type ScrapeRecord struct {
	ID        string       `json:"id"`
	URL       string       `json:"url"`
	Status    RecordStatus `json:"status"`
	Submitted time.Time    `json:"submitted_at"`
	Started   *time.Time   `json:"started_at,omitempty"`
	Finished  *time.Time   `json:"finished_at,omitempty"`
	ErrorText string       `json:"error_text,omitempty"`
	BlobURI   string       `json:"blob_uri,omitempty"`
}

// HistoryEntry is one row of scrape history served to clients.
type HistoryEntry struct {
	ScrapeID   string    `json:"scrape_id"`
	CareersURL string    `json:"careers_url"`
	Company    string    `json:"company"`
	Status     string    `json:"status"`
	JobsCount  int       `json:"jobs_count"`
	TopMatch   int       `json:"top_match"`
	CreatedAt  time.Time `json:"created_at"`
}
