// Package server exposes the resolver over HTTP: resolution endpoints, cache
// administration, health, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/taxocache/internal/core/domain"
	"github.com/vietddude/taxocache/internal/resolver"
	"github.com/vietddude/taxocache/internal/retry"
)

// Server provides the HTTP endpoints.
type Server struct {
	resolver *resolver.Resolver
	server   *http.Server
	log      *slog.Logger
}

// NewServer creates the HTTP server on the given port.
func NewServer(r *resolver.Resolver, port int, log *slog.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		resolver: r,
		log:      log,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/specialties", s.handleSpecialties)
	mux.HandleFunc("GET /api/resolve/slug", s.handleResolveSlug)
	mux.HandleFunc("GET /api/resolve/name", s.handleResolveName)
	mux.HandleFunc("GET /api/cache/stats", s.handleCacheStats)
	mux.HandleFunc("POST /api/cache/clear", s.handleCacheClear)

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

type healthResponse struct {
	Status    string            `json:"status"`
	State     resolver.State    `json:"state"`
	LastError string            `json:"last_error,omitempty"`
	Cache     domain.CacheStats `json:"cache"`
	HitRate   float64           `json:"hit_rate"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state, lastErr := s.resolver.State()
	stats := s.resolver.Stats()

	resp := healthResponse{
		Status:  "ok",
		State:   state,
		Cache:   stats,
		HitRate: stats.HitRate(),
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSpecialties(w http.ResponseWriter, r *http.Request) {
	mapping, err := s.resolver.EnsureLoaded(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapping)
}

type resolveResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (s *Server) handleResolveSlug(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name parameter", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{
		Name: name,
		Slug: s.resolver.ResolveSlug(r.Context(), name),
	})
}

func (s *Server) handleResolveName(w http.ResponseWriter, r *http.Request) {
	sl := r.URL.Query().Get("slug")
	if sl == "" {
		http.Error(w, "missing slug parameter", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{
		Name: s.resolver.ResolveName(r.Context(), sl),
		Slug: sl,
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := s.resolver.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"hits":     stats.Hits,
		"misses":   stats.Misses,
		"hit_rate": stats.HitRate(),
	})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.resolver.Invalidate(r.Context())
	s.log.Info("Cache cleared via admin endpoint")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// writeError renders a classified failure: the descriptor drives the HTTP
// status and the user-facing body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	d := retry.Describe(err)

	status := d.StatusCode
	if status == 0 {
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]any{
		"error":         d.UserMessage,
		"kind":          d.Kind,
		"retryable":     d.Retryable,
		"redirect_hint": d.RedirectHint,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
