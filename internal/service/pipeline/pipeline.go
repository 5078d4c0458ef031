// Package pipeline orchestrates the four-stage consultation transcription
// flow: anonymize, transcribe, validate, template. Stages run strictly
// sequentially because each consumes the previous stage's output; the first
// failure aborts the run. Failures are data, not control flow: Run always
// returns a well-formed outcome, never an error.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinical-transcription-service/internal/events"
	"clinical-transcription-service/internal/models"
	"clinical-transcription-service/internal/observability/logging"
	"clinical-transcription-service/internal/observability/metrics"
	"clinical-transcription-service/internal/service/dialogue"
	"clinical-transcription-service/internal/service/remote"
)

const (
	eventCompleted = "consultation.transcription.completed"
	eventFailed    = "consultation.transcription.failed"
)

// Runner executes transcription pipeline runs. Runs share no mutable state:
// every invocation is independent work, so a single Runner serves concurrent
// requests without coordination.
type Runner struct {
	client    remote.Client
	segmenter *dialogue.Segmenter
	publisher *events.Publisher
	metrics   *metrics.Metrics
	bucket    string
}

// New creates a Runner. bucket names the storage bucket used to compose the
// public URL of the anonymized audio when the controller returns a bare
// object name.
func New(client remote.Client, segmenter *dialogue.Segmenter, publisher *events.Publisher, m *metrics.Metrics, bucket string) *Runner {
	return &Runner{
		client:    client,
		segmenter: segmenter,
		publisher: publisher,
		metrics:   m,
		bucket:    bucket,
	}
}

// Run executes all four stages for the given audio reference. Exactly one
// attempt per stage; a stage failure short-circuits the rest and yields an
// error outcome naming the offending stage.
func (r *Runner) Run(ctx context.Context, audioRef string) models.TranscriptionOutcome {
	consultationID := uuid.NewString()
	start := time.Now()
	r.metrics.RecordRunStart()

	log := logging.WithConsultation(consultationID, audioRef)
	log.Info().Msg("pipeline run started")

	anonymizedURL, err := r.anonymize(ctx, consultationID, audioRef)
	if err != nil {
		return r.fail(ctx, consultationID, audioRef, remote.StepAnonymize, err, start)
	}

	rawTranscript, err := r.transcribe(ctx, consultationID, anonymizedURL)
	if err != nil {
		return r.fail(ctx, consultationID, audioRef, remote.StepTranscribe, err, start)
	}

	validation, err := r.validate(ctx, consultationID, anonymizedURL, rawTranscript)
	if err != nil {
		return r.fail(ctx, consultationID, audioRef, remote.StepValidate, err, start)
	}

	// The corrected transcript feeds template generation; the raw transcript
	// is what gets segmented and exposed verbatim.
	template, summary, err := r.template(ctx, consultationID, validation.Transcript)
	if err != nil {
		return r.fail(ctx, consultationID, audioRef, remote.StepTemplate, err, start)
	}

	conversation := r.segmenter.Segment(rawTranscript)
	r.metrics.RecordSegmentation(len(conversation.Doctor), conversation.FullTranscript != "")
	if conversation.FullTranscript != "" {
		log.Warn().Msg("segmentation degraded to raw transcript fallback")
	}

	outcome := models.TranscriptionOutcome{
		Conversation:  conversation,
		Summary:       summary,
		Template:      template,
		RawTranscript: rawTranscript,
		Corrections:   validation.Corrections,
		AudioURL:      anonymizedURL,
		Status:        models.StatusCompleted,
	}

	r.metrics.RecordRunEnd(true, time.Since(start).Seconds())
	r.publishOutcome(ctx, consultationID, audioRef, outcome)
	log.Info().
		Int("exchanges", len(conversation.Doctor)).
		Int("corrections", len(validation.Corrections)).
		Dur("duration", time.Since(start)).
		Msg("pipeline run completed")
	return outcome
}

// anonymize returns the public URL of the anonymized audio blob.
func (r *Runner) anonymize(ctx context.Context, consultationID, audioRef string) (string, error) {
	payload, err := r.invoke(ctx, consultationID, remote.Request{
		Step:  remote.StepAnonymize,
		Audio: audioRef,
	})
	if err != nil {
		return "", err
	}

	audio, ok := remote.Normalize(payload).String("audio")
	if !ok {
		return "", &remote.MalformedResponseError{Step: remote.StepAnonymize, Field: "audio"}
	}
	return r.publicURL(audio), nil
}

// transcribe returns the raw speaker-tagged transcript.
func (r *Runner) transcribe(ctx context.Context, consultationID, anonymizedURL string) (string, error) {
	payload, err := r.invoke(ctx, consultationID, remote.Request{
		Step:  remote.StepTranscribe,
		Audio: anonymizedURL,
	})
	if err != nil {
		return "", err
	}

	normalized := remote.Normalize(payload)
	if transcript, ok := normalized.String("transcription"); ok {
		return transcript, nil
	}
	if transcript, ok := normalized.String("text"); ok {
		return transcript, nil
	}
	return "", &remote.MalformedResponseError{Step: remote.StepTranscribe, Field: "transcription"}
}

// validate returns the corrected transcript and corrections list. A
// successful response missing the validation fields degrades to the raw
// transcript with no corrections rather than failing the run.
func (r *Runner) validate(ctx context.Context, consultationID, anonymizedURL, rawTranscript string) (remote.Validation, error) {
	payload, err := r.invoke(ctx, consultationID, remote.Request{
		Step:          remote.StepValidate,
		Audio:         anonymizedURL,
		Transcription: rawTranscript,
	})
	if err != nil {
		return remote.Validation{}, err
	}

	validation := remote.ExtractValidation(payload, rawTranscript)
	medicalImpact := 0
	for _, c := range validation.Corrections {
		if c.MedicalImpact {
			medicalImpact++
		}
	}
	r.metrics.RecordValidation(len(validation.Corrections), medicalImpact, validation.Source == remote.ValidationFallback)
	if validation.Source == remote.ValidationFallback {
		log := logging.WithStage(consultationID, string(remote.StepValidate))
		log.Warn().
			Msg("validate response carried no validation fields, keeping raw transcript")
	}
	return validation, nil
}

// template returns the clinical template and summary texts.
func (r *Runner) template(ctx context.Context, consultationID, transcript string) (string, string, error) {
	payload, err := r.invoke(ctx, consultationID, remote.Request{
		Step:          remote.StepTemplate,
		Transcription: transcript,
	})
	if err != nil {
		return "", "", err
	}

	normalized := remote.Normalize(payload)
	template, ok := normalized.String("template")
	if !ok {
		return "", "", &remote.MalformedResponseError{Step: remote.StepTemplate, Field: "template"}
	}
	summary, _ := normalized.String("summary")
	return template, summary, nil
}

// invoke performs one remote call with stage metrics and logging.
func (r *Runner) invoke(ctx context.Context, consultationID string, req remote.Request) (remote.Payload, error) {
	stage := string(req.Step)
	log := logging.WithStage(consultationID, stage)
	log.Info().Msg("stage started")

	start := time.Now()
	payload, err := r.client.Invoke(ctx, req)
	r.metrics.RecordStage(stage, err, time.Since(start).Seconds())
	if err != nil {
		log.Error().Err(err).Msg("stage failed")
		return nil, err
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("stage completed")
	return payload, nil
}

// fail converts a stage error into the terminal error outcome and publishes
// the failed event. Publish failures are logged, never surfaced.
func (r *Runner) fail(ctx context.Context, consultationID, audioRef string, step remote.Step, err error, start time.Time) models.TranscriptionOutcome {
	if _, ok := err.(*remote.MalformedResponseError); ok {
		r.metrics.RecordStageError(string(step), "malformed_response")
	}

	outcome := models.ErrorOutcome(fmt.Sprintf("%s stage failed: %v", step, err))
	r.metrics.RecordRunEnd(false, time.Since(start).Seconds())
	r.publishOutcome(ctx, consultationID, audioRef, outcome)

	log := logging.WithConsultation(consultationID, audioRef)
	log.Error().
		Err(err).
		Str("stage", string(step)).
		Msg("pipeline run aborted")
	return outcome
}

func (r *Runner) publishOutcome(ctx context.Context, consultationID, audioRef string, outcome models.TranscriptionOutcome) {
	event := models.OutcomeEvent{
		ConsultationID: consultationID,
		AudioURL:       audioRef,
		Status:         outcome.Status,
		Message:        outcome.Message,
		Corrections:    len(outcome.Corrections),
		Timestamp:      time.Now().UnixMilli(),
	}

	var err error
	if outcome.Status == models.StatusCompleted {
		event.EventType = eventCompleted
		err = r.publisher.PublishCompleted(ctx, consultationID, event)
	} else {
		event.EventType = eventFailed
		err = r.publisher.PublishFailed(ctx, consultationID, event)
	}
	if err != nil {
		log := logging.WithConsultation(consultationID, audioRef)
		log.Error().
			Err(err).
			Msg("failed to publish outcome event")
	}
}

// publicURL composes the storage URL for an anonymized audio object. The
// controller sometimes returns a full URL and sometimes a bare object name.
func (r *Runner) publicURL(audio string) string {
	if strings.HasPrefix(audio, "http://") || strings.HasPrefix(audio, "https://") {
		return audio
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", r.bucket, audio)
}
