// Package observability provides metrics and monitoring HTTP endpoints.
package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server serves the metrics and probe endpoints on a port separate from the
// caller-facing API, so scrapes and probes keep answering while a slow
// pipeline run holds the API server's write deadline.
type Server struct {
	server  *http.Server
	started time.Time
}

// NewServer builds the observability server for the given address.
func NewServer(addr string) *Server {
	s := &Server{started: time.Now().UTC()}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.probe("ok"))
	mux.HandleFunc("/readyz", s.probe("ready"))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  90 * time.Second,
	}
	return s
}

// probe answers liveness/readiness checks with the probe status and the
// process start time, which makes restarts visible in probe logs.
func (s *Server) probe(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"since":  s.started.Format(time.RFC3339),
		})
	}
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("observability server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("observability server error")
		}
	}()
}

// Shutdown stops the server, letting in-flight scrapes finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
