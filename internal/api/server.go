// Package api exposes the HTTP interface for the scraper service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dpkgyl/catalog-scraper/internal/auth"
	"github.com/dpkgyl/catalog-scraper/internal/config"
	"github.com/dpkgyl/catalog-scraper/internal/scrape"
)

// Scraper is the orchestrator surface the API depends on.
type Scraper interface {
	Scrape(ctx context.Context, req scrape.Request) (scrape.Result, error)
}

// Server wires HTTP handlers to the scrape orchestrator and token store.
type Server struct {
	router  chi.Router
	scraper Scraper
	tokens  *auth.Store
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(scraper Scraper, tokens *auth.Store, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{scraper: scraper, tokens: tokens, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/scrape", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(s.tokenMiddleware)
		}
		r.Post("/", s.handleScrape)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrape.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Pages < 1 {
		writeError(w, http.StatusBadRequest, "pages must be >= 1")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url required")
		return
	}

	result, err := s.scraper.Scrape(r.Context(), req)
	if err != nil {
		s.writeScrapeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeScrapeError maps the scrape error taxonomy onto HTTP statuses with
// enough detail (page, product index) to diagnose from the client side.
func (s *Server) writeScrapeError(w http.ResponseWriter, err error) {
	var (
		fetchErr     *scrape.FetchError
		extractErr   *scrape.ExtractionError
		malformedErr *scrape.MalformedProductError
	)
	switch {
	case errors.Is(err, scrape.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &fetchErr), errors.As(err, &extractErr), errors.As(err, &malformedErr):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		s.logger.Error("scrape failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) tokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("token")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		user, ok := s.tokens.Lookup(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type userKey struct{}

// UserFromContext returns the authenticated user label, if any.
func UserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(userKey{}).(string)
	return user
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
