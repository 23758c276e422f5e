// Package pause provides a context-aware sleeper for courtesy delays.
package pause

import (
	"context"
	"time"
)

// Timer implements scraper.Pauser with a real timer.
type Timer struct{}

// New creates a Timer.
func New() *Timer {
	return &Timer{}
}

// Pause sleeps for the delay or returns early when the context ends.
func (Timer) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
