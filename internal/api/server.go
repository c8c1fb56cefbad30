// Package api exposes the HTTP interface for the hunt service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/darrassipro/email-hunter/internal/config"
	"github.com/darrassipro/email-hunter/internal/hunt"
)

// Runner executes one hunt. Satisfied by *hunt.Hunter.
type Runner interface {
	Run(ctx context.Context, req hunt.Request) (hunt.Result, error)
}

// Server wires HTTP handlers to the hunt runner.
type Server struct {
	router chi.Router
	runner Runner
	logger *zap.Logger
	cfg    config.Config
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner Runner, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner: runner,
		logger: logger,
		cfg:    cfg,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(5 * time.Minute))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/hunts", s.runHunt)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ready"})
}

// huntRequest is the wire shape of a hunt submission. hrFocus is a
// pointer so an absent field defaults to true, matching the service's
// recruiting-first orientation.
type huntRequest struct {
	Query           string `json:"query"`
	HRFocus         *bool  `json:"hrFocus"`
	Country         string `json:"country"`
	MaxQueries      int    `json:"maxQueries"`
	MaxURLsPerQuery int    `json:"maxUrlsPerQuery"`
	GlobalURLBudget int    `json:"globalUrlBudget"`
	CollectDebug    bool   `json:"collectDebug"`
}

// huntResponse wraps the result with an explicit block indicator so 429
// consumers do not have to infer it from counters.
type huntResponse struct {
	Blocked bool `json:"blocked"`
	hunt.Result
}

func (s *Server) runHunt(w http.ResponseWriter, r *http.Request) {
	var req huntRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(s.logger, w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Query == "" {
		writeError(s.logger, w, http.StatusBadRequest, "query is required")
		return
	}

	huntReq := hunt.Request{
		Query:           req.Query,
		HRFocus:         boolOrDefault(req.HRFocus, true),
		Country:         req.Country,
		MaxQueries:      req.MaxQueries,
		MaxURLsPerQuery: req.MaxURLsPerQuery,
		GlobalURLBudget: req.GlobalURLBudget,
		CollectDebug:    req.CollectDebug,
	}

	result, err := s.runner.Run(r.Context(), huntReq)
	if err != nil {
		if errors.Is(err, hunt.ErrEmptyQuery) {
			writeError(s.logger, w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(s.logger, w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := huntResponse{Result: result}
	status := http.StatusOK
	harvested := len(result.HREmails) + len(result.GeneralEmails)
	// A run with no emails, no visited pages, and no fallback links means
	// both engines stonewalled us; a fallback that at least returned links
	// is a fruitless hunt, not a block.
	if result.CaptchaTriggered ||
		(harvested == 0 && len(result.ScrapedURLs) == 0 && result.Stats.FallbackLinks == 0) {
		resp.Blocked = true
		status = http.StatusTooManyRequests
	}
	writeJSON(s.logger, w, status, resp)
}

func boolOrDefault(ptr *bool, def bool) bool {
	if ptr == nil {
		return def
	}
	return *ptr
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(logger, w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
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
				writeError(nil, w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(logger *zap.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, map[string]string{"error": msg})
}
