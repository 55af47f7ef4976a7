// Package server exposes the pipeline as a callable HTTP endpoint for an
// external scheduler, plus metrics and health probes.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"event_scraper/internal/domain"
	"event_scraper/internal/metrics"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (*domain.RunSummary, error)
}

type Config struct {
	CronSecret string
	RunTimeout time.Duration
}

type Server struct {
	runner  Runner
	cfg     Config
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(runner Runner, cfg Config, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		runner:  runner,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/cron/scrape-events", s.handleScrape)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScrape gates the run on the shared cron secret. An unset secret
// rejects everything: there is no open mode.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	ctx := r.Context()
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	summary, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("scrape run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.CronSecret == "" {
		return false
	}
	return r.Header.Get("Authorization") == "Bearer "+s.cfg.CronSecret
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
