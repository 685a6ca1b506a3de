// Package proxy implements the CORS fetch proxy the extractor talks to:
// GET /fetch?url=<share link> relays page HTML, GET /health reports
// liveness. Targets are restricted to the chat service's share-link
// pattern and browser callers to an origin allowlist.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coursekit/roundex/internal/share"
)

// Fetcher relays a target URL (with fallback candidates) to the upstream
// service. Satisfied by *Upstream.
type Fetcher interface {
	Fetch(ctx context.Context, candidates []string) (int, string)
}

type Server struct {
	router   *chi.Mux
	port     int
	origins  map[string]bool // nil allows any origin
	upstream Fetcher
	logger   *slog.Logger
}

// NewServer wires the proxy routes. allowedOrigins is a comma-separated
// list; "*" or empty allows any origin.
func NewServer(port int, allowedOrigins string, upstream Fetcher, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		port:     port,
		origins:  parseOrigins(allowedOrigins),
		upstream: upstream,
		logger:   logger,
	}

	router.Options("/*", s.preflight)
	router.Get("/health", s.health)
	router.Get("/fetch", s.fetch)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("proxy listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func parseOrigins(raw string) map[string]bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return nil
	}
	out := make(map[string]bool)
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out[o] = true
		}
	}
	return out
}

func (s *Server) originAllowed(origin string) bool {
	// Non-browser callers send no Origin header; let them through.
	return s.origins == nil || origin == "" || s.origins[origin]
}

func (s *Server) setCORS(w http.ResponseWriter, origin string) {
	allow := "*"
	if s.origins != nil {
		if s.origins[origin] {
			allow = origin
		} else {
			for o := range s.origins {
				if allow == "*" || o < allow {
					allow = o
				}
			}
		}
	}
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", allow)
	h.Set("Access-Control-Allow-Methods", "GET,OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Max-Age", "86400")
	h.Set("Vary", "Origin")
}

func (s *Server) preflight(w http.ResponseWriter, r *http.Request) {
	s.setCORS(w, r.Header.Get("Origin"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.setCORS(w, r.Header.Get("Origin"))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	s.setCORS(w, origin)

	if !s.originAllowed(origin) {
		s.jsonError(w, http.StatusForbidden, "origin_not_allowed")
		return
	}

	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		s.jsonError(w, http.StatusBadRequest, "missing_url_param")
		return
	}
	if !share.Allowed(target) {
		s.jsonError(w, http.StatusBadRequest, "target_not_allowed")
		return
	}

	candidates := []string{target}
	if alt := share.AltURL(target); alt != "" {
		candidates = append(candidates, alt)
	}

	status, body := s.upstream.Fetch(r.Context(), candidates)
	s.logger.Info("relayed fetch", "target", target, "status", status)

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func (s *Server) jsonError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code})
}
