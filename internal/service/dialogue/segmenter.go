// Package dialogue turns a raw speaker-tagged consultation transcript into
// the turn-aligned doctor/patient view the UI consumes.
package dialogue

import (
	"regexp"
	"strings"

	"clinical-transcription-service/internal/models"
)

// SpeakerMarkers holds the literal role labels used as speaker markers in the
// transcript. Matching is case-sensitive: the remote controller emits the
// Spanish labels verbatim, so "doctor" is not a marker.
type SpeakerMarkers struct {
	Doctor  string
	Patient string
}

// DefaultMarkers returns the role labels the controller emits.
func DefaultMarkers() SpeakerMarkers {
	return SpeakerMarkers{Doctor: "Doctor", Patient: "Paciente"}
}

type speaker int

const (
	speakerDoctor speaker = iota
	speakerPatient
)

// turn is one contiguous utterance by a single speaker. Turns only live for
// the duration of a Segment call; they are never persisted.
type turn struct {
	speaker speaker
	text    string
}

// Segmenter parses marker-tagged transcripts. Safe for concurrent use.
type Segmenter struct {
	doctorRe  *regexp.Regexp
	patientRe *regexp.Regexp
}

// New creates a Segmenter for the given markers. The marker grammar tolerates
// every colon placement the controller has been seen to produce: **Doctor**,
// **Doctor**:, **Doctor** : and **Doctor:**.
func New(markers SpeakerMarkers) *Segmenter {
	return &Segmenter{
		doctorRe:  markerPattern(markers.Doctor),
		patientRe: markerPattern(markers.Patient),
	}
}

func markerPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`^\*\*` + regexp.QuoteMeta(label) + `\s*:?\s*\*\*\s*:?\s*`)
}

// Segment parses the raw transcript in two passes: linearize lines into
// chronological turns, then realign the turns into parallel per-exchange
// arrays. Segmentation never fails; when it cannot confidently produce paired
// turns it degrades by returning the raw transcript in FullTranscript.
func (s *Segmenter) Segment(raw string) models.Conversation {
	if strings.TrimSpace(raw) == "" {
		return models.EmptyConversation()
	}

	turns := s.linearize(raw)
	conv := realign(turns)

	if degraded(conv) {
		conv.FullTranscript = raw
	}
	return conv
}

// linearize scans lines in order, opening a new turn at each speaker marker
// and space-joining markerless lines into the open turn. Lines before the
// first marker are dropped.
func (s *Segmenter) linearize(raw string) []turn {
	var turns []turn
	var current turn
	open := false

	flush := func() {
		if open && strings.TrimSpace(current.text) != "" {
			turns = append(turns, current)
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		who, rest, ok := s.matchMarker(line)
		if ok {
			flush()
			current = turn{speaker: who, text: rest}
			open = true
			continue
		}
		if open && line != "" {
			current.text = joinSpace(current.text, line)
		}
	}
	flush()
	return turns
}

func (s *Segmenter) matchMarker(line string) (speaker, string, bool) {
	if loc := s.doctorRe.FindStringIndex(line); loc != nil {
		return speakerDoctor, line[loc[1]:], true
	}
	if loc := s.patientRe.FindStringIndex(line); loc != nil {
		return speakerPatient, line[loc[1]:], true
	}
	return 0, "", false
}

// realign walks the turns keeping a current exchange index. The index
// advances only on a patient→doctor transition; same-speaker runs and
// doctor→patient hand-offs stay on the current exchange. Both arrays are
// padded so they always have equal length.
func realign(turns []turn) models.Conversation {
	conv := models.EmptyConversation()
	idx := 0
	var prev speaker
	first := true

	for _, t := range turns {
		if !first && prev == speakerPatient && t.speaker == speakerDoctor {
			idx++
		}
		for len(conv.Doctor) <= idx {
			conv.Doctor = append(conv.Doctor, "")
			conv.Patient = append(conv.Patient, "")
		}
		if t.speaker == speakerDoctor {
			conv.Doctor[idx] = joinSpace(conv.Doctor[idx], t.text)
		} else {
			conv.Patient[idx] = joinSpace(conv.Patient[idx], t.text)
		}
		prev = t.speaker
		first = false
	}
	return conv
}

// degraded reports whether structured pairing failed: nothing was segmented,
// or one side holds a single empty slot (single-speaker transcript).
func degraded(conv models.Conversation) bool {
	if len(conv.Doctor) == 0 || len(conv.Patient) == 0 {
		return true
	}
	if len(conv.Doctor) == 1 && conv.Doctor[0] == "" {
		return true
	}
	if len(conv.Patient) == 1 && conv.Patient[0] == "" {
		return true
	}
	return false
}

func joinSpace(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}
