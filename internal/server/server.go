package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/convergio/azure-cost-api/internal/config"
	"github.com/convergio/azure-cost-api/internal/costs"
	"github.com/convergio/azure-cost-api/internal/logger"
	"github.com/convergio/azure-cost-api/internal/version"
)

// HTTP server timeout constants
const (
	DefaultReadTimeout  = 15 * time.Second // Maximum duration for reading the entire request
	DefaultWriteTimeout = 60 * time.Second // Covers worst-case upstream retries within a request
	DefaultIdleTimeout  = 60 * time.Second // Maximum amount of time to wait for the next request

	// DefaultDays is the summary lookback window when the days query
	// parameter is omitted
	DefaultDays = 30
)

// CostService is the consumer-facing cost query contract
type CostService interface {
	GetCostSummary(ctx context.Context, days int) (costs.CostSummary, error)
	GetForecast(ctx context.Context) (costs.CostForecast, error)
	GetCurrentMonthCosts(ctx context.Context) (costs.CostSummary, error)
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	costs  CostService
	cfg    *config.Config
	logger *logger.Logger
}

// NewServer creates a new HTTP server exposing the cost API
func NewServer(cfg *config.Config, service CostService, gatherer prometheus.Gatherer, log *logger.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:      mux,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		costs:  service,
		cfg:    cfg,
		logger: log,
	}

	// Register handlers
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/costs", s.handleCosts)
	mux.HandleFunc("/api/v1/costs/forecast", s.handleForecast)
	mux.HandleFunc("/api/v1/costs/current-month", s.handleCurrentMonth)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleIndex lists the available endpoints
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !s.requireGet(w, r) {
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "azure-cost-api",
		"version": version.Version,
		"endpoints": []string{
			"/health",
			"/api/v1/costs",
			"/api/v1/costs/forecast",
			"/api/v1/costs/current-month",
			"/metrics",
		},
	})
}

// handleHealth handles health check requests (always returns 200 for liveness)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

// handleCosts serves the cost summary for the last N days (default 30)
func (s *Server) handleCosts(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}

	days := DefaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid days parameter %q", raw))
			return
		}
		days = parsed
	}
	if days < costs.MinDays || days > costs.MaxDays {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("days must be between %d and %d", costs.MinDays, costs.MaxDays))
		return
	}

	summary, err := s.costs.GetCostSummary(r.Context(), days)
	if err != nil {
		s.logger.Error("Failed to get cost summary", "days", days, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

// handleForecast serves the estimated end-of-month spend
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}

	forecast, err := s.costs.GetForecast(r.Context())
	if err != nil {
		s.logger.Error("Failed to get cost forecast", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, forecast)
}

// handleCurrentMonth serves the cost summary for the current billing period
func (s *Server) handleCurrentMonth(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}

	summary, err := s.costs.GetCurrentMonthCosts(r.Context())
	if err != nil {
		s.logger.Error("Failed to get current month costs", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

// requireGet rejects non-GET requests with 405
func (s *Server) requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

// writeError mirrors the {"detail": ...} error shape consumers already parse
func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
