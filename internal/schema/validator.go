// Package schema validates outcome events before they leave the service.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Validator checks that an event is a well-formed JSON object carrying the
// envelope fields every downstream consumer depends on.
type Validator struct{}

// New creates a Validator.
func New() *Validator {
	return &Validator{}
}

// Validate returns an error when the event does not marshal to a JSON object
// with a non-empty eventType and timestamp.
func (v *Validator) Validate(event any) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event not marshalable: %w", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		return errors.New("event is not a JSON object")
	}

	eventType, _ := obj["eventType"].(string)
	if eventType == "" {
		return errors.New("event missing eventType")
	}
	if ts, ok := obj["timestamp"].(float64); !ok || ts <= 0 {
		return errors.New("event missing timestamp")
	}
	return nil
}
