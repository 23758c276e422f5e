// Package api hosts the HTTP server, middleware, and REST handlers for
// operator access. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/scrapes for scrape submission, GET /v1/scrapes/{id} for status.
//   - GET /v1/history for recent scrape summaries.
//   - POST /v1/analyses for resume-to-jobs matching with cold email drafts.
package api
