// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scraperPagesTotal              *prometheus.CounterVec
	scraperJobsParsedTotal         *prometheus.CounterVec
	scraperSessionsTotal           *prometheus.CounterVec
	scraperFetchRetriesTotal       prometheus.Counter
	scraperHeadlessPromotionsTotal prometheus.Counter
	httpRequestsTotal              *prometheus.CounterVec
	httpRequestDurationSeconds     *prometheus.HistogramVec
	scraperActiveWorkers           prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scraperPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Total number of list and detail pages fetched, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		scraperJobsParsedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_jobs_parsed_total",
				Help: "Total number of job records parsed, labeled by site.",
			},
			[]string{"site"},
		)

		scraperSessionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_sessions_total",
				Help: "Total number of scrape sessions, labeled by final status.",
			},
			[]string{"status"},
		)

		scraperFetchRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_fetch_retries_total",
				Help: "Total number of fetch retry attempts.",
			},
		)

		scraperHeadlessPromotionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_headless_promotions_total",
				Help: "Total number of probe fetches promoted to a headless browser.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		scraperActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_active_workers",
				Help: "Number of workers currently running a scrape session.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage increments the page counter for the given site and status.
func ObservePage(site string, status string) {
	scraperPagesTotal.WithLabelValues(SanitizeSite(site), status).Inc()
}

// ObserveSession records a finished scrape session and its parsed job count.
func ObserveSession(site string, status string, jobsParsed int) {
	scraperSessionsTotal.WithLabelValues(status).Inc()
	if jobsParsed > 0 {
		scraperJobsParsedTotal.WithLabelValues(SanitizeSite(site)).Add(float64(jobsParsed))
	}
}

// ObserveFetchRetry increments the fetch retry counter.
func ObserveFetchRetry() {
	scraperFetchRetriesTotal.Inc()
}

// ObserveHeadlessPromotion increments the headless promotion counter.
func ObserveHeadlessPromotion() {
	scraperHeadlessPromotionsTotal.Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	scraperActiveWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	scraperActiveWorkers.Dec()
}
