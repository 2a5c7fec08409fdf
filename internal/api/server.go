// Package api exposes the debug HTTP surface served while a run is in
// flight.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/citesweep/citesweep/internal/metrics"
)

// Server serves health and Prometheus metrics endpoints.
type Server struct {
	router chi.Router
	logger *zap.Logger
}

// NewServer constructs a Server with its routes registered.
func NewServer(logger *zap.Logger) *Server {
	s := &Server{logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		s.logger.Error("healthz write failed", zap.Error(err))
	}
}
