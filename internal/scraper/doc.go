// Package scraper implements the careers-page crawl-and-extract pipeline:
// list-page fetching with retry, pagination discovery, candidate link
// extraction, session-scoped dedup, per-job detail enrichment, and assembly
// of the final result document.
package scraper
