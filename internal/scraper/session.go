package scraper

import "fmt"

// Session holds the mutable state scoped to one scrape invocation: the
// seen-hash set and acceptance counter enforcing the output cap. It is
// created at the start of one Scrape call and discarded at its end; it is
// never shared across sessions.
type Session struct {
	hasher   Hasher
	maxJobs  int
	seen     map[string]struct{}
	accepted int
}

// NewSession creates session state with an empty dedup registry.
func NewSession(hasher Hasher, maxJobs int) *Session {
	if maxJobs <= 0 {
		maxJobs = MaxJobs
	}
	return &Session{
		hasher:  hasher,
		maxJobs: maxJobs,
		seen:    make(map[string]struct{}),
	}
}

// DedupHash returns the stable digest over the candidate's title and URL.
func (s *Session) DedupHash(c Candidate) (string, error) {
	sum, err := s.hasher.Hash([]byte(c.Title + "_" + c.URL))
	if err != nil {
		return "", fmt.Errorf("hash candidate: %w", err)
	}
	return sum, nil
}

// Keep decides whether the candidate survives dedup and the output cap.
// First-seen wins: duplicates and overflow candidates are dropped silently.
// The registry is only mutated when the candidate is kept.
func (s *Session) Keep(c Candidate) (string, bool) {
	hash, err := s.DedupHash(c)
	if err != nil {
		return "", false
	}
	if _, dup := s.seen[hash]; dup {
		return hash, false
	}
	if s.accepted >= s.maxJobs {
		return hash, false
	}
	s.seen[hash] = struct{}{}
	s.accepted++
	return hash, true
}

// Accepted reports how many candidates the session has kept so far.
func (s *Session) Accepted() int {
	return s.accepted
}
