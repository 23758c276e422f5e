package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	maxFetchAttempts = 3
	backoffBase      = time.Second
)

// RetryingFetcher wraps a probe fetcher and a headless fetcher. Each fetch
// tries the probe first and promotes to headless when the detector flags the
// response as script-rendered. Transient failures retry with exponential
// backoff up to the attempt cap.
type RetryingFetcher struct {
	probe    Fetcher
	headless Fetcher
	detector HeadlessDetector
	pauser   Pauser
	logger   *zap.Logger
}

// NewRetryingFetcher wires the two-stage fetch pipeline.
func NewRetryingFetcher(probe, headless Fetcher, detector HeadlessDetector, pauser Pauser, logger *zap.Logger) *RetryingFetcher {
	return &RetryingFetcher{
		probe:    probe,
		headless: headless,
		detector: detector,
		pauser:   pauser,
		logger:   logger,
	}
}

// Fetch retrieves the URL, retrying up to three times. Between attempts it
// sleeps 1s then 2s so transient upstream hiccups can clear.
func (f *RetryingFetcher) Fetch(ctx context.Context, rawURL string) (RenderedPage, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		if attempt > 1 {
			delay := backoffBase
			for i := 2; i < attempt; i++ {
				delay *= 2
			}
			f.logger.Debug("retrying fetch",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay))
			f.pauser.Pause(ctx, delay)
		}
		if err := ctx.Err(); err != nil {
			return RenderedPage{}, err
		}

		page, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return RenderedPage{}, fmt.Errorf("fetch %s: all %d attempts failed: %w", rawURL, maxFetchAttempts, lastErr)
}

func (f *RetryingFetcher) fetchOnce(ctx context.Context, rawURL string) (RenderedPage, error) {
	page, err := f.probe.Fetch(ctx, rawURL)
	if err != nil {
		return RenderedPage{}, fmt.Errorf("probe fetch: %w", err)
	}
	if !f.detector.ShouldPromote(page) {
		return page, nil
	}

	f.logger.Debug("promoting to headless fetch", zap.String("url", rawURL))
	rendered, err := f.headless.Fetch(ctx, rawURL)
	if err != nil {
		// The probe body is still usable when the browser fails.
		f.logger.Warn("headless fetch failed, using probe body",
			zap.String("url", rawURL), zap.Error(err))
		return page, nil
	}
	rendered.UsedHeadless = true
	return rendered, nil
}
