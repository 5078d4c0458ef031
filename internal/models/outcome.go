// Package models defines the data structures for consultation transcription results.
package models

// Outcome status values. A pipeline run always terminates in "completed" or
// "error"; "uploaded" and "processing" exist for callers that track a
// consultation across the upload and transcription requests.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

// Conversation is the speaker-segmented view of a consultation transcript.
// Doctor and Patient are parallel arrays indexed by exchange number and always
// have equal length. FullTranscript carries the raw transcript verbatim when
// segmentation could not confidently produce paired turns; consumers should
// render it instead of the arrays when set.
type Conversation struct {
	Doctor         []string `json:"doctor"`
	Patient        []string `json:"patient"`
	FullTranscript string   `json:"full_transcription,omitempty"`
}

// EmptyConversation returns the canonical empty conversation: both arrays
// present and empty, no fallback text.
func EmptyConversation() Conversation {
	return Conversation{Doctor: []string{}, Patient: []string{}}
}

// Correction is one transcript repair reported by the validation step.
// JSON field names match the remote service's Spanish wire format.
type Correction struct {
	Line          int    `json:"linea"`
	Original      string `json:"original"`
	Corrected     string `json:"corregido"`
	MedicalImpact bool   `json:"impacto_medico"`
}

// TranscriptionOutcome is the terminal result of one pipeline run. It is
// created once per run and never mutated after construction; every failure
// path is expressed as Status "error" with a message rather than an error
// value, so callers always receive a well-formed outcome.
type TranscriptionOutcome struct {
	Conversation  Conversation `json:"transcription"`
	Summary       string       `json:"summary,omitempty"`
	Template      string       `json:"template,omitempty"`
	RawTranscript string       `json:"raw_transcription,omitempty"`
	Corrections   []Correction `json:"errors"`
	AudioURL      string       `json:"url,omitempty"`
	Status        string       `json:"status"`
	Message       string       `json:"message,omitempty"`
}

// ErrorOutcome builds the terminal outcome for a failed run: empty
// conversation, empty (non-nil) corrections, and a human-readable message.
func ErrorOutcome(message string) TranscriptionOutcome {
	return TranscriptionOutcome{
		Conversation: EmptyConversation(),
		Corrections:  []Correction{},
		Status:       StatusError,
		Message:      message,
	}
}

// OutcomeEvent is the event published when a pipeline run terminates.
type OutcomeEvent struct {
	EventType      string `json:"eventType"`
	ConsultationID string `json:"consultationId"`
	AudioURL       string `json:"audioUrl"`
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
	Corrections    int    `json:"corrections"`
	Timestamp      int64  `json:"timestamp"`
}
