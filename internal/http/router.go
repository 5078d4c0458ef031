// Package http exposes the caller-facing API: audio upload, transcription
// runs, and the anonymized-audio byte proxy.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"clinical-transcription-service/internal/observability"
	"clinical-transcription-service/internal/observability/metrics"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestLogger)
	r.Use(observability.RequestMetrics(metrics.DefaultMetrics))

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API endpoints
	r.Post("/v1/audio", h.UploadAudio)
	r.Get("/v1/audio", h.StreamAudio)
	r.Post("/v1/transcriptions", h.RunTranscription)
	r.Get("/v1/transcriptions/sample", h.SampleTranscription)

	return r
}
