// Package scriba provides the HTTP client for the Scriba transcription
// controller: a single POST endpoint that dispatches on the step field.
package scriba

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"clinical-transcription-service/internal/observability/logging"
	"clinical-transcription-service/internal/service/remote"
)

// maxErrorBody bounds how much of an error response is carried in the error.
const maxErrorBody = 4 << 10

// Client implements remote.Client against the controller endpoint.
// Each Invoke is exactly one attempt; the controller's idempotency under
// retry is unverified, so no retry happens at this layer.
type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

// New creates a controller client for the given endpoint. The timeout bounds
// the whole request including body read; transcription steps can be slow, so
// callers should size it generously.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		log:      logging.WithComponent("scriba"),
	}
}

// Invoke posts one step request and decodes the JSON response body.
func (c *Client) Invoke(ctx context.Context, req remote.Request) (remote.Payload, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", req.Step, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.Step, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &remote.TransportError{Step: req.Step, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Best effort: a failed body read must not mask the status error.
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Error().
			Str("step", string(req.Step)).
			Int("status", resp.StatusCode).
			Msg("controller returned error status")
		return nil, &remote.StatusError{
			Step:       req.Step,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(errBody),
		}
	}

	var payload remote.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", req.Step, err)
	}

	c.log.Debug().
		Str("step", string(req.Step)).
		Dur("duration", time.Since(start)).
		Msg("controller step completed")
	return payload, nil
}
