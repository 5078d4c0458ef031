// Package remote defines the interface for the external transcription
// controller that performs anonymization, speech-to-text, validation and
// template generation as discrete steps.
package remote

import (
	"context"
	"errors"
	"fmt"
)

// Step identifies one discrete operation of the remote controller.
type Step string

const (
	StepAnonymize  Step = "anonymize"
	StepTranscribe Step = "transcribe"
	StepValidate   Step = "validate"
	StepTemplate   Step = "template"
)

// Request is the wire body for one controller invocation. Audio carries an
// audio reference for anonymize/transcribe/validate; Transcription carries the
// transcript text for validate/template.
type Request struct {
	Step          Step   `json:"step"`
	Audio         string `json:"audio,omitempty"`
	Transcription string `json:"transcription,omitempty"`
}

// Client invokes one step of the remote controller. Implementations perform
// exactly one attempt per call; retry policy, if ever added, belongs to the
// caller and must be opt-in per step.
type Client interface {
	Invoke(ctx context.Context, req Request) (Payload, error)
}

// StatusError reports a non-success HTTP status from the controller.
// Body is read best-effort; a failed body read never masks the status.
type StatusError struct {
	Step       Step
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("remote %s failed: %s: %s", e.Step, e.Status, e.Body)
	}
	return fmt.Sprintf("remote %s failed: %s", e.Step, e.Status)
}

// TransportError reports a failure to reach the controller at all. Timeouts
// are not distinguished from other transport failures at this layer.
type TransportError struct {
	Step Step
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote %s unreachable: %v", e.Step, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError reports a successful response that is missing a
// field the step contract requires.
type MalformedResponseError struct {
	Step  Step
	Field string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("remote %s response missing %q", e.Step, e.Field)
}

// IsTransport reports whether err originated at the transport layer.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
