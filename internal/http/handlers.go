package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"clinical-transcription-service/internal/models"
	"clinical-transcription-service/internal/observability/logging"
	"clinical-transcription-service/internal/storage"
)

// maxUploadBytes bounds the in-memory portion of multipart parsing.
const maxUploadBytes = 32 << 20

// Runner runs one transcription pipeline invocation. The outcome is always
// well-formed; errors are carried in its status, never returned.
type Runner interface {
	Run(ctx context.Context, audioRef string) models.TranscriptionOutcome
}

// Handler serves the caller-facing API.
type Handler struct {
	runner Runner
	store  storage.Store
	log    zerolog.Logger
}

// NewHandler creates a Handler. store may be nil when no bucket is
// configured; the storage endpoints then answer 503.
func NewHandler(runner Runner, store storage.Store) *Handler {
	return &Handler{
		runner: runner,
		store:  store,
		log:    logging.WithComponent("http"),
	}
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// UploadAudio accepts a multipart audio file and stores it, returning the
// blob's public URL for a subsequent transcription request.
func (h *Handler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no audio file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "audio/") {
		writeError(w, http.StatusBadRequest, "invalid file type, only audio files are allowed")
		return
	}

	uploaded, err := h.store.Upload(r.Context(), file, header.Filename, contentType)
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("audio upload failed")
		writeError(w, http.StatusInternalServerError, "error uploading audio file")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:  true,
		Filename: uploaded.Object,
		URL:      uploaded.URL,
	})
}

type transcriptionRequest struct {
	AudioURL string `json:"audioUrl"`
}

// RunTranscription runs the full pipeline for an uploaded audio blob. The
// response is always HTTP 200 with a TranscriptionOutcome body; pipeline
// failures are reported in its status field, not as HTTP errors.
func (h *Handler) RunTranscription(w http.ResponseWriter, r *http.Request) {
	var req transcriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AudioURL == "" {
		writeError(w, http.StatusBadRequest, "no audio URL provided")
		return
	}

	outcome := h.runner.Run(r.Context(), req.AudioURL)
	writeJSON(w, http.StatusOK, outcome)
}

// StreamAudio proxies a stored audio blob to the caller, preserving the
// blob's content-type framing.
func (h *Handler) StreamAudio(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage not configured")
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "no URL provided")
		return
	}

	rc, contentType, err := h.store.Download(r.Context(), url)
	if err != nil {
		h.log.Error().Err(err).Str("url", url).Msg("audio download failed")
		writeError(w, http.StatusBadGateway, "failed to fetch audio")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Error().Err(err).Str("url", url).Msg("audio stream interrupted")
	}
}

// SampleTranscription returns a fixture outcome with one medical-impact
// correction, for UI development against a stable payload.
func (h *Handler) SampleTranscription(w http.ResponseWriter, _ *http.Request) {
	raw := "**Doctor:** Hola, ¿qué le sucede?\n**Paciente:** Empecé a tomar la medicina ayer."

	writeJSON(w, http.StatusOK, models.TranscriptionOutcome{
		Conversation: models.Conversation{
			Doctor:  []string{"Hola, ¿qué le sucede?"},
			Patient: []string{"Empecé a tomar la medicina ayer."},
		},
		Summary:       "Paciente reporta haber iniciado tratamiento el día anterior.",
		Template:      "# Historia Clínica\n\n## Medicación\n- Paciente inició tratamiento el día anterior",
		RawTranscript: raw,
		Corrections: []models.Correction{
			{
				Line:          2,
				Original:      "**Paciente:** Empecé a hablar la medicina ayer.",
				Corrected:     "**Paciente:** Empecé a tomar la medicina ayer.",
				MedicalImpact: true,
			},
		},
		AudioURL: "https://example.com/audio-example.mp3",
		Status:   models.StatusCompleted,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
