package dialogue

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegment_SingleExchange(t *testing.T) {
	s := New(DefaultMarkers())

	conv := s.Segment("**Doctor**: Hola\n**Paciente**: Bien")

	if !reflect.DeepEqual(conv.Doctor, []string{"Hola"}) {
		t.Errorf("expected doctor [Hola], got %v", conv.Doctor)
	}
	if !reflect.DeepEqual(conv.Patient, []string{"Bien"}) {
		t.Errorf("expected patient [Bien], got %v", conv.Patient)
	}
	if conv.FullTranscript != "" {
		t.Errorf("expected no fallback transcript, got %q", conv.FullTranscript)
	}
}

func TestSegment_MarkerVariants(t *testing.T) {
	s := New(DefaultMarkers())

	tests := []struct {
		name  string
		input string
	}{
		{"colon after bold", "**Doctor**: Hola\n**Paciente**: Bien"},
		{"no colon", "**Doctor** Hola\n**Paciente** Bien"},
		{"space before colon", "**Doctor** : Hola\n**Paciente** : Bien"},
		{"colon inside bold", "**Doctor:** Hola\n**Paciente:** Bien"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := s.Segment(tt.input)
			if !reflect.DeepEqual(conv.Doctor, []string{"Hola"}) {
				t.Errorf("doctor = %v, want [Hola]", conv.Doctor)
			}
			if !reflect.DeepEqual(conv.Patient, []string{"Bien"}) {
				t.Errorf("patient = %v, want [Bien]", conv.Patient)
			}
		})
	}
}

func TestSegment_MarkersAreCaseSensitive(t *testing.T) {
	s := New(DefaultMarkers())

	conv := s.Segment("**doctor**: Hola\n**paciente**: Bien")

	if len(conv.Doctor) != 0 || len(conv.Patient) != 0 {
		t.Errorf("lowercase labels must not match: doctor=%v patient=%v", conv.Doctor, conv.Patient)
	}
	if conv.FullTranscript == "" {
		t.Error("expected fallback transcript when no markers match")
	}
}

func TestSegment_MultiLineTurnAccumulation(t *testing.T) {
	s := New(DefaultMarkers())

	conv := s.Segment("**Doctor**: Hola\ncomo esta\n**Paciente**: Bien")

	if got := conv.Doctor[0]; got != "Hola como esta" {
		t.Errorf("expected continuation lines joined with spaces, got %q", got)
	}
}

func TestSegment_SameSpeakerRunDoesNotAdvanceExchange(t *testing.T) {
	s := New(DefaultMarkers())

	conv := s.Segment("**Doctor**: A\n**Doctor**: B\n**Paciente**: C")

	if !reflect.DeepEqual(conv.Doctor, []string{"A B"}) {
		t.Errorf("expected doctor [A B], got %v", conv.Doctor)
	}
	if !reflect.DeepEqual(conv.Patient, []string{"C"}) {
		t.Errorf("expected patient [C], got %v", conv.Patient)
	}
}

func TestSegment_PatientToDoctorStartsNewExchange(t *testing.T) {
	s := New(DefaultMarkers())

	conv := s.Segment(strings.Join([]string{
		"**Doctor**: Hola",
		"**Paciente**: Buenas",
		"**Doctor**: Qué le sucede",
		"**Paciente**: Me duele la cabeza",
	}, "\n"))

	if !reflect.DeepEqual(conv.Doctor, []string{"Hola", "Qué le sucede"}) {
		t.Errorf("doctor = %v", conv.Doctor)
	}
	if !reflect.DeepEqual(conv.Patient, []string{"Buenas", "Me duele la cabeza"}) {
		t.Errorf("patient = %v", conv.Patient)
	}
}

func TestSegment_PatientOpensConversation(t *testing.T) {
	s := New(DefaultMarkers())

	// The patient→doctor transition starts a new exchange, so the opening
	// patient turn occupies exchange 0 alone with a padded doctor slot.
	conv := s.Segment("**Paciente**: Buenas\n**Doctor**: Hola")

	if !reflect.DeepEqual(conv.Doctor, []string{"", "Hola"}) {
		t.Errorf("doctor = %v", conv.Doctor)
	}
	if !reflect.DeepEqual(conv.Patient, []string{"Buenas", ""}) {
		t.Errorf("patient = %v", conv.Patient)
	}
}

func TestSegment_EqualLengthInvariant(t *testing.T) {
	s := New(DefaultMarkers())

	inputs := []string{
		"**Doctor**: A",
		"**Paciente**: B",
		"**Doctor**: A\n**Paciente**: B\n**Doctor**: C",
		"**Paciente**: A\n**Paciente**: B\n**Doctor**: C\n**Doctor**: D\n**Paciente**: E",
		"texto suelto\n**Doctor**: A\nmas texto\n**Paciente**: B",
		"",
		"sin marcadores en absoluto",
	}

	for _, input := range inputs {
		conv := s.Segment(input)
		if len(conv.Doctor) != len(conv.Patient) {
			t.Errorf("input %q: doctor len %d != patient len %d", input, len(conv.Doctor), len(conv.Patient))
		}
	}
}

func TestSegment_NoMarkersFallsBackToRaw(t *testing.T) {
	s := New(DefaultMarkers())
	raw := "una transcripción sin ningún marcador de hablante"

	conv := s.Segment(raw)

	if len(conv.Doctor) != 0 || len(conv.Patient) != 0 {
		t.Errorf("expected empty arrays, got doctor=%v patient=%v", conv.Doctor, conv.Patient)
	}
	if conv.FullTranscript != raw {
		t.Errorf("expected fallback transcript %q, got %q", raw, conv.FullTranscript)
	}
}

func TestSegment_SingleSpeakerFallsBack(t *testing.T) {
	s := New(DefaultMarkers())
	raw := "**Doctor**: Hola, soy el doctor"

	conv := s.Segment(raw)

	if conv.FullTranscript != raw {
		t.Error("expected fallback when only one speaker is present")
	}
	if !reflect.DeepEqual(conv.Patient, []string{""}) {
		t.Errorf("expected patient [\"\"], got %v", conv.Patient)
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	s := New(DefaultMarkers())

	for _, input := range []string{"", "   ", "\n\n"} {
		conv := s.Segment(input)
		if len(conv.Doctor) != 0 || len(conv.Patient) != 0 {
			t.Errorf("input %q: expected empty arrays", input)
		}
		if conv.FullTranscript != "" {
			t.Errorf("input %q: empty input must not trigger the fallback", input)
		}
	}
}

func TestSegment_LinesBeforeFirstMarkerDropped(t *testing.T) {
	s := New(DefaultMarkers())

	conv := s.Segment("ruido inicial\n**Doctor**: Hola\n**Paciente**: Bien")

	if !reflect.DeepEqual(conv.Doctor, []string{"Hola"}) {
		t.Errorf("leading markerless lines must be dropped, got %v", conv.Doctor)
	}
}

func TestSegment_MarkerOnlyTurnIsDiscarded(t *testing.T) {
	s := New(DefaultMarkers())

	// A marker line with no text and no continuation leaves nothing to flush.
	conv := s.Segment("**Doctor**:\n**Doctor**: Hola\n**Paciente**: Bien")

	if !reflect.DeepEqual(conv.Doctor, []string{"Hola"}) {
		t.Errorf("doctor = %v, want [Hola]", conv.Doctor)
	}
}

func TestSegment_CustomMarkers(t *testing.T) {
	s := New(SpeakerMarkers{Doctor: "Arzt", Patient: "Patient"})

	conv := s.Segment("**Arzt**: Hallo\n**Patient**: Gut")

	if !reflect.DeepEqual(conv.Doctor, []string{"Hallo"}) {
		t.Errorf("doctor = %v", conv.Doctor)
	}
	if !reflect.DeepEqual(conv.Patient, []string{"Gut"}) {
		t.Errorf("patient = %v", conv.Patient)
	}
}
