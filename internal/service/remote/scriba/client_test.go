package scriba

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinical-transcription-service/internal/service/remote"
)

func TestInvoke_PostsStepRequest(t *testing.T) {
	var received remote.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"transcription": "**Doctor**: Hola"})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	payload, err := c.Invoke(context.Background(), remote.Request{
		Step:  remote.StepTranscribe,
		Audio: "https://storage.googleapis.com/b/a.wav",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received.Step != remote.StepTranscribe {
		t.Errorf("step = %s", received.Step)
	}
	if received.Audio != "https://storage.googleapis.com/b/a.wav" {
		t.Errorf("audio = %s", received.Audio)
	}
	if transcript, ok := payload.String("transcription"); !ok || transcript != "**Doctor**: Hola" {
		t.Errorf("payload = %v", payload)
	}
}

func TestInvoke_NonSuccessStatusYieldsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("model unavailable"))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Invoke(context.Background(), remote.Request{Step: remote.StepValidate})

	var statusErr *remote.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status code = %d", statusErr.StatusCode)
	}
	if statusErr.Step != remote.StepValidate {
		t.Errorf("step = %s", statusErr.Step)
	}
	if statusErr.Body != "model unavailable" {
		t.Errorf("body = %q", statusErr.Body)
	}
}

func TestInvoke_TransportFailureYieldsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, time.Second)
	_, err := c.Invoke(context.Background(), remote.Request{Step: remote.StepAnonymize})

	if !remote.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestInvoke_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, err := c.Invoke(context.Background(), remote.Request{Step: remote.StepTemplate})

	if err == nil {
		t.Fatal("expected decode error")
	}
	if remote.IsTransport(err) {
		t.Error("decode failure must not be classified as transport")
	}
}

func TestInvoke_SingleAttemptPerCall(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	_, _ = c.Invoke(context.Background(), remote.Request{Step: remote.StepAnonymize})

	if attempts != 1 {
		t.Errorf("expected exactly one attempt, got %d", attempts)
	}
}

func TestInvoke_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	c := New(srv.URL, time.Minute)
	_, err := c.Invoke(ctx, remote.Request{Step: remote.StepTranscribe})

	if err == nil {
		t.Fatal("expected error after context cancellation")
	}
}
