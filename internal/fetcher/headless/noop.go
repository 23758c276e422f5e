package headless

import (
	"context"
	"errors"

	"github.com/jobpilot/careers-crawler/internal/scraper"
)

// Noop implements the fetcher interfaces but always reports that headless
// browsing is unavailable. It is wired when headless is disabled in config.
type Noop struct{}

// NewNoop creates a new Noop fetcher.
func NewNoop() *Noop {
	return &Noop{}
}

// Fetch returns an error since this is a stub implementation.
func (Noop) Fetch(_ context.Context, _ string) (scraper.RenderedPage, error) {
	return scraper.RenderedPage{}, errors.New("headless fetcher not configured")
}

// Acquire hands out a no-op release so sessions run without a browser slot.
func (Noop) Acquire(context.Context) (func(), error) {
	return func() {}, nil
}
