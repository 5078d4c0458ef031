// Package mock provides a scripted remote client for tests and for running
// the service without a reachable controller (REMOTE_PROVIDER=mock).
package mock

import (
	"context"
	"sync"

	"clinical-transcription-service/internal/service/remote"
)

// DefaultResponses simulates a healthy controller: each step answers with the
// shape the real controller uses, including the {input, output} envelope on
// the steps that wrap their result.
var DefaultResponses = map[remote.Step]remote.Payload{
	remote.StepAnonymize: {
		"input":  map[string]any{"step": "anonymize"},
		"output": map[string]any{"audio": "anon-consulta.wav"},
	},
	remote.StepTranscribe: {
		"transcription": "**Doctor:** Hola, ¿qué le sucede?\n**Paciente:** Empecé a tomar la medicina ayer.",
	},
	remote.StepValidate: {
		"output": map[string]any{
			"validated_transcription": "**Doctor:** Hola, ¿qué le sucede?\n**Paciente:** Empecé a tomar la medicina ayer.",
			"errores": []any{
				map[string]any{
					"linea":          2,
					"original":       "**Paciente:** Empecé a hablar la medicina ayer.",
					"corregido":      "**Paciente:** Empecé a tomar la medicina ayer.",
					"impacto_medico": true,
				},
			},
		},
	},
	remote.StepTemplate: {
		"template": "# Historia Clínica\n\n## Medicación\n- Paciente inició tratamiento el día anterior",
		"summary":  "Paciente reporta haber iniciado tratamiento el día anterior.",
	},
}

// Client implements remote.Client with scripted per-step responses.
type Client struct {
	mu        sync.Mutex
	Responses map[remote.Step]remote.Payload
	Errs      map[remote.Step]error
	Calls     []remote.Request
}

// New creates a mock client preloaded with DefaultResponses.
func New() *Client {
	responses := make(map[remote.Step]remote.Payload, len(DefaultResponses))
	for step, payload := range DefaultResponses {
		responses[step] = payload
	}
	return &Client{Responses: responses, Errs: map[remote.Step]error{}}
}

// Invoke records the request and returns the scripted response or error.
func (c *Client) Invoke(_ context.Context, req remote.Request) (remote.Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, req)
	if err := c.Errs[req.Step]; err != nil {
		return nil, err
	}
	return c.Responses[req.Step], nil
}

// CallSteps returns the step of every recorded call, in order.
func (c *Client) CallSteps() []remote.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	steps := make([]remote.Step, len(c.Calls))
	for i, call := range c.Calls {
		steps[i] = call.Step
	}
	return steps
}
