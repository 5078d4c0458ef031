package schema

import (
	"testing"
	"time"

	"clinical-transcription-service/internal/models"
)

func TestValidate_AcceptsWellFormedEvent(t *testing.T) {
	v := New()

	event := models.OutcomeEvent{
		EventType:      "consultation.transcription.completed",
		ConsultationID: "abc-123",
		Status:         models.StatusCompleted,
		Timestamp:      time.Now().UnixMilli(),
	}

	if err := v.Validate(event); err != nil {
		t.Errorf("expected valid event, got %v", err)
	}
}

func TestValidate_RejectsMissingEventType(t *testing.T) {
	v := New()

	event := models.OutcomeEvent{
		ConsultationID: "abc-123",
		Timestamp:      time.Now().UnixMilli(),
	}

	if err := v.Validate(event); err == nil {
		t.Error("expected rejection for missing eventType")
	}
}

func TestValidate_RejectsMissingTimestamp(t *testing.T) {
	v := New()

	event := models.OutcomeEvent{
		EventType:      "consultation.transcription.failed",
		ConsultationID: "abc-123",
	}

	if err := v.Validate(event); err == nil {
		t.Error("expected rejection for missing timestamp")
	}
}

func TestValidate_RejectsNonObjectEvent(t *testing.T) {
	v := New()

	if err := v.Validate("just a string"); err == nil {
		t.Error("expected rejection for non-object event")
	}
}

func TestValidate_RejectsUnmarshalableEvent(t *testing.T) {
	v := New()

	if err := v.Validate(make(chan int)); err == nil {
		t.Error("expected rejection for unmarshalable event")
	}
}
