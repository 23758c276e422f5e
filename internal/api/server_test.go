package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jobpilot/careers-crawler/internal/config"
	"github.com/jobpilot/careers-crawler/internal/dispatcher"
	queuememory "github.com/jobpilot/careers-crawler/internal/queue/memory"
	"github.com/jobpilot/careers-crawler/internal/scraper"
	storememory "github.com/jobpilot/careers-crawler/internal/storage/memory"
)

type seqIDs struct{ n int }

func (g *seqIDs) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("scrape-%d", g.n), nil
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type testEnv struct {
	server  *Server
	store   *storememory.ScrapeStore
	history *storememory.HistoryStore
	queue   *queuememory.Queue
}

func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	store := storememory.NewScrapeStore()
	history := storememory.NewHistoryStore(10)
	queue := queuememory.NewQueue(8)
	server := NewServer(Options{
		Store:      store,
		History:    history,
		Dispatcher: dispatcher.New(queue, nil),
		IDGen:      &seqIDs{},
		Clock:      &fixedClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
		Logger:     zap.NewNop(),
		Config:     cfg,
	})
	return &testEnv{server: server, store: store, history: history, queue: queue}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestSubmitScrapeEnqueues(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{})
	rec := doJSON(t, env.server.Handler(), http.MethodPost, "/v1/scrapes",
		map[string]string{"url": "https://acme.com/careers"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	require.Equal(t, "scrape-1", resp["scrape_id"])

	stored, err := env.store.GetScrape(context.Background(), "scrape-1")
	require.NoError(t, err)
	require.Equal(t, scraper.RecordQueued, stored.Status)
	require.Equal(t, "https://acme.com/careers", stored.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	item, err := env.queue.Dequeue(ctx)
	require.NoError(t, err)
	require.Equal(t, "scrape-1", item.ScrapeID)
	require.Equal(t, "https://acme.com/careers", item.URL)
}

func TestSubmitScrapeRejectsBadInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{})

	rec := doJSON(t, env.server.Handler(), http.MethodPost, "/v1/scrapes", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.server.Handler(), http.MethodPost, "/v1/scrapes",
		map[string]string{"url": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.server.Handler(), http.MethodPost, "/v1/scrapes",
		map[string]string{"url": "ftp://acme.com/careers"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.server.Handler(), http.MethodPost, "/v1/scrapes",
		map[string]string{"url": "/careers"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetScrapeStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{})
	doJSON(t, env.server.Handler(), http.MethodPost, "/v1/scrapes",
		map[string]string{"url": "https://acme.com/careers"})

	rec := doJSON(t, env.server.Handler(), http.MethodGet, "/v1/scrapes/scrape-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Scrape scraper.ScrapeRecord `json:"scrape"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, "scrape-1", resp.Scrape.ID)
	require.Equal(t, scraper.RecordQueued, resp.Scrape.Status)

	rec = doJSON(t, env.server.Handler(), http.MethodGet, "/v1/scrapes/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetScrapeResultLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{})
	doJSON(t, env.server.Handler(), http.MethodPost, "/v1/scrapes",
		map[string]string{"url": "https://acme.com/careers"})

	rec := doJSON(t, env.server.Handler(), http.MethodGet, "/v1/scrapes/scrape-1/result", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	doc := scraper.ResultDocument{SchemaVersion: scraper.SchemaVersion, Jobs: []scraper.JobRecord{}}
	doc.Source.CompanyName = "Acme"
	doc.Source.ScrapeStatus = scraper.StatusSuccess
	require.NoError(t, env.store.SaveResult(context.Background(), "scrape-1", doc))

	rec = doJSON(t, env.server.Handler(), http.MethodGet, "/v1/scrapes/scrape-1/result", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got scraper.ResultDocument
	decodeBody(t, rec, &got)
	require.Equal(t, "Acme", got.Source.CompanyName)
	require.Equal(t, scraper.SchemaVersion, got.SchemaVersion)
}

func TestGetHistory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{})
	require.NoError(t, env.history.Record(context.Background(), scraper.HistoryEntry{
		ScrapeID:   "scrape-9",
		CareersURL: "https://acme.com/careers",
		Company:    "Acme",
		Status:     "success",
		JobsCount:  4,
	}))

	rec := doJSON(t, env.server.Handler(), http.MethodGet, "/v1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		History []scraper.HistoryEntry `json:"history"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.History, 1)
	require.Equal(t, "Acme", resp.History[0].Company)
}

func seedResult(t *testing.T, env *testEnv) {
	t.Helper()
	doJSON(t, env.server.Handler(), http.MethodPost, "/v1/scrapes",
		map[string]string{"url": "https://acme.com/careers"})

	doc := scraper.ResultDocument{Jobs: []scraper.JobRecord{
		{
			Title:          "Senior Backend Engineer",
			SeniorityLevel: "Senior",
			Location:       scraper.Location{City: "Pune", Country: "India"},
			Skills:         scraper.SkillTally{"programming": 3, "database": 2},
			Application:    scraper.Application{ApplyURL: "https://acme.com/jobs/1"},
		},
	}}
	doc.Source.CompanyName = "Acme"
	doc.Source.ScrapeStatus = scraper.StatusSuccess
	doc.ContactInformation.PrivacyEmail = "privacy@acme.com"
	require.NoError(t, env.store.SaveResult(context.Background(), "scrape-1", doc))
}

func TestAnalyzeResume(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{})
	seedResult(t, env)

	rec := doJSON(t, env.server.Handler(), http.MethodPost, "/v1/analyses", map[string]string{
		"scrape_id":   "scrape-1",
		"resume_text": "Saksham Sharma\npython go postgresql\nsaksham@example.com",
		"city":        "Pune",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ScrapeID string `json:"scrape_id"`
		Resume   struct {
			Name       string   `json:"name"`
			SkillsFlat []string `json:"skills_flat"`
		} `json:"resume"`
		Analysis struct {
			Jobs []struct {
				Title    string `json:"title"`
				Score    int    `json:"match_score"`
				Priority string `json:"priority"`
			} `json:"jobs"`
			HighMatches int `json:"high_matches"`
		} `json:"analysis"`
		ColdEmail *struct {
			To    string `json:"to"`
			Ready bool   `json:"ready"`
		} `json:"cold_email"`
	}
	decodeBody(t, rec, &resp)
	require.Equal(t, "scrape-1", resp.ScrapeID)
	require.Equal(t, "Saksham Sharma", resp.Resume.Name)
	require.Contains(t, resp.Resume.SkillsFlat, "go")

	require.Len(t, resp.Analysis.Jobs, 1)
	// 70 base + 5 skills * 3 + 20 city bonus = 105, capped at 95.
	require.Equal(t, 95, resp.Analysis.Jobs[0].Score)
	require.Equal(t, "HIGH", resp.Analysis.Jobs[0].Priority)

	// Only one high match, so a cold email draft accompanies the analysis.
	require.NotNil(t, resp.ColdEmail)
	require.True(t, resp.ColdEmail.Ready)
	require.Equal(t, "privacy@acme.com", resp.ColdEmail.To)

	// The analysis refreshes history with the top match score.
	entries, err := env.history.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 95, entries[0].TopMatch)
}

func TestAnalyzeResumeErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{})
	doJSON(t, env.server.Handler(), http.MethodPost, "/v1/scrapes",
		map[string]string{"url": "https://acme.com/careers"})

	rec := doJSON(t, env.server.Handler(), http.MethodPost, "/v1/analyses",
		map[string]string{"scrape_id": "scrape-1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, env.server.Handler(), http.MethodPost, "/v1/analyses",
		map[string]string{"scrape_id": "missing", "resume_text": "text"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Record exists but no result yet.
	rec = doJSON(t, env.server.Handler(), http.MethodPost, "/v1/analyses",
		map[string]string{"scrape_id": "scrape-1", "resume_text": "text"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSendEmailWithoutSMTP(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{})
	rec := doJSON(t, env.server.Handler(), http.MethodPost, "/v1/emails", map[string]string{
		"to": "privacy@acme.com", "subject": "Hi", "body": "Hello",
	})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIKeyMiddleware(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	cfg.Auth.Enabled = true
	cfg.Auth.APIKey = "secret"
	env := newTestEnv(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/healthz?api_key=secret", nil)
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpointsAndRequestID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{})
	rec := doJSON(t, env.server.Handler(), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doJSON(t, env.server.Handler(), http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "ready"))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{})
	rec := doJSON(t, env.server.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
