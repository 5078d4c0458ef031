package remote

import (
	"encoding/json"

	"clinical-transcription-service/internal/models"
)

// Payload is a decoded controller response body. The controller does not use
// a consistent envelope: some steps wrap the result under {input, output},
// others return the result object directly. Normalize absorbs that difference.
type Payload map[string]any

// Normalize unwraps the {input, output} envelope when present. A payload that
// carries both an "input" and an object-valued "output" key yields the output
// object; anything else is returned unchanged. Normalize is idempotent on
// flat payloads and performs no semantic validation of field presence.
func Normalize(raw Payload) Payload {
	if raw == nil {
		return Payload{}
	}
	if _, ok := raw["input"]; !ok {
		return raw
	}
	if out, ok := raw["output"].(map[string]any); ok {
		return Payload(out)
	}
	return raw
}

// String returns the named field as a non-empty string.
func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ValidationSource records which extraction path produced a Validation.
type ValidationSource string

const (
	// ValidationNested means the fields were found under the output envelope.
	ValidationNested ValidationSource = "nested"
	// ValidationFlat means the fields were found at the top level.
	ValidationFlat ValidationSource = "flat"
	// ValidationFallback means neither shape matched and the pre-validation
	// transcript was carried through unchanged.
	ValidationFallback ValidationSource = "fallback"
)

// Validation is the extracted result of the validate step.
type Validation struct {
	Transcript  string
	Corrections []models.Correction
	Source      ValidationSource
}

// ExtractValidation pulls the corrected transcript and corrections list out
// of a validate-step response, tolerating format drift: it tries the nested
// output.validated_transcription/output.errores shape first, then the flat
// shape, and finally falls back to the pre-validation transcript with no
// corrections. Corrections are always a non-nil slice; an absent or
// undecodable list means no corrections.
func ExtractValidation(raw Payload, fallbackTranscript string) Validation {
	if out, ok := raw["output"].(map[string]any); ok {
		if transcript, ok := Payload(out).String("validated_transcription"); ok {
			return Validation{
				Transcript:  transcript,
				Corrections: decodeCorrections(out["errores"]),
				Source:      ValidationNested,
			}
		}
	}
	if transcript, ok := raw.String("validated_transcription"); ok {
		return Validation{
			Transcript:  transcript,
			Corrections: decodeCorrections(raw["errores"]),
			Source:      ValidationFlat,
		}
	}
	return Validation{
		Transcript:  fallbackTranscript,
		Corrections: []models.Correction{},
		Source:      ValidationFallback,
	}
}

// decodeCorrections converts the loosely-typed errores list into Correction
// values via a JSON round trip. Anything undecodable yields the empty list.
func decodeCorrections(v any) []models.Correction {
	if v == nil {
		return []models.Correction{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []models.Correction{}
	}
	var corrections []models.Correction
	if err := json.Unmarshal(b, &corrections); err != nil || corrections == nil {
		return []models.Correction{}
	}
	return corrections
}
