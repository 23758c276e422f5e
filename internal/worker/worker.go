// Package worker executes queued scrape requests end to end.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobpilot/careers-crawler/internal/clock/system"
	"github.com/jobpilot/careers-crawler/internal/metrics"
	"github.com/jobpilot/careers-crawler/internal/scraper"
)

// Engine runs one scrape session for a careers page URL.
type Engine interface {
	Scrape(ctx context.Context, startURL string) scraper.ResultDocument
}

// Options wires a Worker. Queue, Store and Engine are required; the
// blob store, history store and publisher are optional side channels.
type Options struct {
	Queue     scraper.Queue
	Store     scraper.ScrapeStore
	Engine    Engine
	Blobs     scraper.BlobStore
	History   scraper.HistoryStore
	Publisher scraper.Publisher
	Clock     scraper.Clock
	Logger    *zap.Logger

	// BlobPrefix is prepended to archived result object paths.
	BlobPrefix string
	// Topic is the Pub/Sub topic for scrape-completed events. Empty disables publishing.
	Topic string
}

// Worker consumes queue items and runs the scrape pipeline for each.
type Worker struct {
	queue      scraper.Queue
	store      scraper.ScrapeStore
	engine     Engine
	blobs      scraper.BlobStore
	history    scraper.HistoryStore
	publisher  scraper.Publisher
	clock      scraper.Clock
	logger     *zap.Logger
	blobPrefix string
	topic      string
}

// New constructs a Worker.
func New(opts Options) *Worker {
	if opts.Clock == nil {
		opts.Clock = system.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	metrics.Init()
	return &Worker{
		queue:      opts.Queue,
		store:      opts.Store,
		engine:     opts.Engine,
		blobs:      opts.Blobs,
		history:    opts.History,
		publisher:  opts.Publisher,
		clock:      opts.Clock,
		logger:     opts.Logger,
		blobPrefix: strings.Trim(opts.BlobPrefix, "/"),
		topic:      opts.Topic,
	}
}

// Run blocks, consuming queue items until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued scrape", zap.String("scrape_id", item.ScrapeID), zap.String("url", item.URL))
		w.process(ctx, item)
	}
}

func (w *Worker) process(ctx context.Context, item scraper.QueueItem) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	if err := w.store.UpdateScrapeStatus(ctx, item.ScrapeID, scraper.RecordRunning, ""); err != nil {
		w.logger.Error("mark scrape running", zap.String("scrape_id", item.ScrapeID), zap.Error(err))
		return
	}

	doc := w.engine.Scrape(ctx, item.URL)

	if err := w.store.SaveResult(ctx, item.ScrapeID, doc); err != nil {
		w.logger.Error("save result", zap.String("scrape_id", item.ScrapeID), zap.Error(err))
		w.updateStatus(ctx, item.ScrapeID, scraper.RecordFailed, fmt.Sprintf("save result: %v", err))
		return
	}

	blobURI := w.archive(ctx, item.ScrapeID, doc)
	w.recordHistory(ctx, item, doc)
	w.publishEvent(ctx, item, doc, blobURI)
	metrics.ObserveSession(item.URL, string(doc.Source.ScrapeStatus), doc.ScrapingMetadata.JobsSuccessfullyParsed)

	status := scraper.RecordFailed
	if doc.Source.ScrapeStatus == scraper.StatusSuccess {
		status = scraper.RecordSucceeded
	}
	w.updateStatus(ctx, item.ScrapeID, status, doc.Source.Error)
	w.logger.Info("scrape finished",
		zap.String("scrape_id", item.ScrapeID),
		zap.String("url", item.URL),
		zap.String("status", string(doc.Source.ScrapeStatus)),
		zap.Int("jobs", len(doc.Jobs)),
	)
}

func (w *Worker) updateStatus(ctx context.Context, scrapeID string, status scraper.RecordStatus, errText string) {
	if err := w.store.UpdateScrapeStatus(ctx, scrapeID, status, errText); err != nil {
		w.logger.Error("final scrape status update failed", zap.String("scrape_id", scrapeID), zap.Error(err))
	}
}

// archive serializes the document to the blob store. Archive failures are
// logged but never fail the scrape.
func (w *Worker) archive(ctx context.Context, scrapeID string, doc scraper.ResultDocument) string {
	if w.blobs == nil {
		return ""
	}
	data, err := json.Marshal(doc)
	if err != nil {
		w.logger.Warn("marshal result for archive", zap.String("scrape_id", scrapeID), zap.Error(err))
		return ""
	}
	path := scrapeID + ".json"
	if w.blobPrefix != "" {
		path = w.blobPrefix + "/" + path
	}
	uri, err := w.blobs.PutObject(ctx, path, "application/json", bytes.NewReader(data))
	if err != nil {
		w.logger.Warn("archive result", zap.String("scrape_id", scrapeID), zap.Error(err))
		return ""
	}
	return uri
}

func (w *Worker) recordHistory(ctx context.Context, item scraper.QueueItem, doc scraper.ResultDocument) {
	if w.history == nil {
		return
	}
	entry := scraper.HistoryEntry{
		ScrapeID:   item.ScrapeID,
		CareersURL: item.URL,
		Company:    doc.Source.CompanyName,
		Status:     string(doc.Source.ScrapeStatus),
		JobsCount:  len(doc.Jobs),
		CreatedAt:  w.clock.Now(),
	}
	if err := w.history.Record(ctx, entry); err != nil {
		w.logger.Warn("record history", zap.String("scrape_id", item.ScrapeID), zap.Error(err))
	}
}

func (w *Worker) publishEvent(ctx context.Context, item scraper.QueueItem, doc scraper.ResultDocument, blobURI string) {
	if w.publisher == nil || w.topic == "" {
		return
	}
	payload := map[string]any{
		"scrape_id":   item.ScrapeID,
		"careers_url": item.URL,
		"status":      string(doc.Source.ScrapeStatus),
		"jobs_parsed": doc.ScrapingMetadata.JobsSuccessfullyParsed,
		"blob_uri":    blobURI,
		"timestamp":   w.clock.Now().Format(time.RFC3339),
	}
	if _, err := w.publisher.Publish(ctx, w.topic, payload); err != nil {
		w.logger.Warn("publish scrape event", zap.String("scrape_id", item.ScrapeID), zap.Error(err))
	}
}
