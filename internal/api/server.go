package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobpilot/careers-crawler/internal/config"
	"github.com/jobpilot/careers-crawler/internal/dispatcher"
	"github.com/jobpilot/careers-crawler/internal/email"
	"github.com/jobpilot/careers-crawler/internal/match"
	"github.com/jobpilot/careers-crawler/internal/metrics"
	"github.com/jobpilot/careers-crawler/internal/resume"
	"github.com/jobpilot/careers-crawler/internal/scraper"
)

const historyLimit = 10

// Options wires a Server. Store, Dispatcher, IDGen and Clock are
// required; History and Sender are optional features.
type Options struct {
	Store      scraper.ScrapeStore
	History    scraper.HistoryStore
	Dispatcher *dispatcher.Dispatcher
	IDGen      scraper.IDGenerator
	Clock      scraper.Clock
	Sender     *email.Sender
	Logger     *zap.Logger
	Config     config.Config
}

// Server wires HTTP handlers to the dispatcher and stores.
type Server struct {
	router     chi.Router
	store      scraper.ScrapeStore
	history    scraper.HistoryStore
	dispatcher *dispatcher.Dispatcher
	idGen      scraper.IDGenerator
	clock      scraper.Clock
	sender     *email.Sender
	logger     *zap.Logger
	cfg        config.Config
}

// NewServer constructs a Server with middleware and routes.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{
		store:      opts.Store,
		history:    opts.History,
		dispatcher: opts.Dispatcher,
		idGen:      opts.IDGen,
		clock:      opts.Clock,
		sender:     opts.Sender,
		logger:     opts.Logger,
		cfg:        opts.Config,
	}

	metrics.Init()

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(60 * time.Second))
	if opts.Config.Auth.Enabled {
		r.Use(apiKeyMiddleware(opts.Config.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/scrapes", func(r chi.Router) {
			r.Post("/", s.submitScrape)
			r.Route("/{scrape_id}", func(r chi.Router) {
				r.Get("/", s.getScrape)
				r.Get("/result", s.getScrapeResult)
			})
		})
		r.Get("/history", s.getHistory)
		r.Post("/analyses", s.analyzeResume)
		r.Post("/emails", s.sendEmail)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// In-memory dependencies are always ready; in future check downstreams.
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type scrapeRequest struct {
	URL string `json:"url"`
}

func (s *Server) submitScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validateCareersURL(req.URL); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	scrapeID, err := s.enqueueScrape(r.Context(), req.URL)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusRequestTimeout
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"scrape_id": scrapeID})
}

func (s *Server) getScrape(w http.ResponseWriter, r *http.Request) {
	scrapeID := chi.URLParam(r, "scrape_id")
	rec, err := s.store.GetScrape(r.Context(), scrapeID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "scrape not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"scrape": rec})
}

func (s *Server) getScrapeResult(w http.ResponseWriter, r *http.Request) {
	scrapeID := chi.URLParam(r, "scrape_id")
	if _, err := s.store.GetScrape(r.Context(), scrapeID); err != nil {
		s.writeError(w, http.StatusNotFound, "scrape not found")
		return
	}
	doc, err := s.store.GetResult(r.Context(), scrapeID)
	if err != nil {
		s.writeError(w, http.StatusConflict, "result not available yet")
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"history": []scraper.HistoryEntry{}})
		return
	}
	entries, err := s.history.ListRecent(r.Context(), historyLimit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to fetch history")
		return
	}
	if entries == nil {
		entries = []scraper.HistoryEntry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

type analysisRequest struct {
	ScrapeID   string `json:"scrape_id"`
	ResumeText string `json:"resume_text"`
	City       string `json:"city"`
}

type analysisResponse struct {
	ScrapeID  string         `json:"scrape_id"`
	Profile   resume.Profile `json:"resume"`
	Analysis  match.Analysis `json:"analysis"`
	ColdEmail *email.Draft   `json:"cold_email,omitempty"`
}

func (s *Server) analyzeResume(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ScrapeID == "" || strings.TrimSpace(req.ResumeText) == "" {
		s.writeError(w, http.StatusBadRequest, "scrape_id and resume_text are required")
		return
	}

	rec, err := s.store.GetScrape(r.Context(), req.ScrapeID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "scrape not found")
		return
	}
	doc, err := s.store.GetResult(r.Context(), req.ScrapeID)
	if err != nil {
		s.writeError(w, http.StatusConflict, "result not available yet")
		return
	}

	profile := resume.ExtractProfile(req.ResumeText)
	analysis := match.Score(doc, match.Candidate{City: req.City})

	resp := analysisResponse{
		ScrapeID: req.ScrapeID,
		Profile:  profile,
		Analysis: analysis,
	}
	if analysis.EmailRecommended() {
		draft := email.Compose(profile, doc)
		resp.ColdEmail = &draft
	}

	s.recordTopMatch(r.Context(), rec, doc, analysis)
	s.writeJSON(w, http.StatusOK, resp)
}

// recordTopMatch refreshes the history row with the best match score so
// /v1/history can surface it.
func (s *Server) recordTopMatch(ctx context.Context, rec scraper.ScrapeRecord, doc scraper.ResultDocument, analysis match.Analysis) {
	if s.history == nil || len(analysis.Jobs) == 0 {
		return
	}
	entry := scraper.HistoryEntry{
		ScrapeID:   rec.ID,
		CareersURL: rec.URL,
		Company:    doc.Source.CompanyName,
		Status:     string(doc.Source.ScrapeStatus),
		JobsCount:  len(doc.Jobs),
		TopMatch:   analysis.Jobs[0].Score,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.history.Record(ctx, entry); err != nil {
		s.logger.Warn("record top match", zap.String("scrape_id", rec.ID), zap.Error(err))
	}
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *Server) sendEmail(w http.ResponseWriter, r *http.Request) {
	if s.sender == nil {
		s.writeError(w, http.StatusServiceUnavailable, "smtp is not configured")
		return
	}
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.To == "" || req.Subject == "" || req.Body == "" {
		s.writeError(w, http.StatusBadRequest, "to, subject and body are required")
		return
	}
	if err := s.sender.Send(email.Draft{To: req.To, Subject: req.Subject, Body: req.Body}); err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) enqueueScrape(ctx context.Context, careersURL string) (string, error) {
	scrapeID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate scrape id: %w", err)
	}
	now := s.clock.Now()
	rec := scraper.ScrapeRecord{
		ID:        scrapeID,
		URL:       careersURL,
		Status:    scraper.RecordQueued,
		Submitted: now,
	}
	if err := s.store.CreateScrape(ctx, rec); err != nil {
		return "", fmt.Errorf("create scrape: %w", err)
	}
	queueCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	item := scraper.QueueItem{
		ScrapeID:  scrapeID,
		URL:       careersURL,
		Submitted: now.Unix(),
	}
	if err := s.dispatcher.Enqueue(queueCtx, item); err != nil {
		return "", fmt.Errorf("enqueue scrape: %w", err)
	}
	return scrapeID, nil
}

func validateCareersURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("url must be absolute http or https")
	}
	return nil
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
