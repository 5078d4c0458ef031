package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"clinical-transcription-service/internal/app"
	"clinical-transcription-service/internal/config"
	"clinical-transcription-service/internal/events"
	httpapi "clinical-transcription-service/internal/http"
	"clinical-transcription-service/internal/observability"
	"clinical-transcription-service/internal/observability/metrics"
	"clinical-transcription-service/internal/service/dialogue"
	"clinical-transcription-service/internal/service/pipeline"
	"clinical-transcription-service/internal/service/remote"
	"clinical-transcription-service/internal/service/remote/mock"
	"clinical-transcription-service/internal/service/remote/scriba"
	"clinical-transcription-service/internal/storage"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := config.Load()
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}
	defer application.Shutdown()

	// Observability server (metrics + health)
	obsServer := observability.NewServer(":" + cfg.Observability.MetricsPort)
	obsServer.Start()

	// Kafka publisher for outcome events
	publisher := events.New(&events.Config{
		Enabled:        cfg.Kafka.Enabled,
		Brokers:        cfg.Kafka.Brokers,
		TopicCompleted: cfg.Kafka.TopicCompleted,
		TopicFailed:    cfg.Kafka.TopicFailed,
		Principal:      cfg.Kafka.Principal,
	})
	defer publisher.Close()

	// Remote transcription controller
	var client remote.Client
	switch cfg.Remote.Provider {
	case "mock":
		application.Logger.Warn().Msg("using mock remote provider")
		client = mock.New()
	default:
		if cfg.Remote.Endpoint == "" {
			log.Fatal("REMOTE_ENDPOINT is required when REMOTE_PROVIDER is not mock")
		}
		client = scriba.New(cfg.Remote.Endpoint, cfg.Remote.Timeout)
	}

	// Object storage for audio blobs (optional)
	var store storage.Store
	if cfg.Storage.Bucket != "" {
		gcsStore, err := storage.NewGCS(context.Background(), cfg.Storage.Bucket)
		if err != nil {
			log.Fatalf("failed to create storage client: %v", err)
		}
		defer gcsStore.Close()
		store = gcsStore
	} else {
		application.Logger.Warn().Msg("GCS_BUCKET_NAME not set, storage endpoints disabled")
	}

	segmenter := dialogue.New(dialogue.SpeakerMarkers{
		Doctor:  cfg.Markers.Doctor,
		Patient: cfg.Markers.Patient,
	})
	runner := pipeline.New(client, segmenter, publisher, metrics.DefaultMetrics, cfg.Storage.Bucket)

	handler := httpapi.NewHandler(runner, store)
	apiServer := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      httpapi.NewRouter(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Remote.Timeout * 5, // a run is four sequential remote calls
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		application.Logger.Info().
			Str("addr", apiServer.Addr).
			Msg("Clinical transcription API started")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http serve failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	application.Logger.Info().Msg("shutting down HTTP servers")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		application.Logger.Error().Err(err).Msg("API server shutdown failed")
	}
	if err := obsServer.Shutdown(ctx); err != nil {
		application.Logger.Error().Err(err).Msg("observability server shutdown failed")
	}
}
