package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

type fakeHasher struct{}

func (fakeHasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

type failingHasher struct{}

func (failingHasher) Hash([]byte) (string, error) {
	return "", errors.New("hash failure")
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type recordingPauser struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (p *recordingPauser) Pause(_ context.Context, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delays = append(p.delays, delay)
}

func (p *recordingPauser) recorded() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Duration(nil), p.delays...)
}

// fakeFetcher serves canned bodies by URL and records the fetch order.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	fetats []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (RenderedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetats = append(f.fetats, rawURL)
	if err, ok := f.errs[rawURL]; ok {
		return RenderedPage{}, err
	}
	body, ok := f.pages[rawURL]
	if !ok {
		return RenderedPage{}, errors.New("not found")
	}
	return RenderedPage{
		URL:        rawURL,
		FinalURL:   rawURL,
		StatusCode: 200,
		Body:       []byte(body),
	}, nil
}

func (f *fakeFetcher) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetats...)
}

// countingFetcher fails the first n fetches then succeeds.
type countingFetcher struct {
	mu       sync.Mutex
	attempts int
	fails    int
	body     string
}

func (f *countingFetcher) Fetch(_ context.Context, rawURL string) (RenderedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.fails {
		return RenderedPage{}, errors.New("transient error")
	}
	return RenderedPage{URL: rawURL, FinalURL: rawURL, StatusCode: 200, Body: []byte(f.body)}, nil
}

type fakeDetector struct {
	promote bool
}

func (d fakeDetector) ShouldPromote(RenderedPage) bool { return d.promote }

type fakeResource struct {
	mu       sync.Mutex
	acquires int
	releases int
	err      error
}

func (r *fakeResource) Acquire(context.Context) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.acquires++
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.releases++
	}, nil
}
