// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig
	Remote        RemoteConfig
	Storage       StorageConfig
	Kafka         KafkaConfig
	Markers       MarkersConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	Principal string
	HTTPPort  string
}

// RemoteConfig holds the transcription controller settings.
type RemoteConfig struct {
	Provider string // scriba, mock
	Endpoint string
	Timeout  time.Duration
}

// StorageConfig holds the object storage settings.
type StorageConfig struct {
	Bucket string
}

// KafkaConfig holds outcome event publishing settings.
type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	TopicCompleted string
	TopicFailed    string
	Principal      string
}

// MarkersConfig holds the speaker marker labels the segmenter matches.
type MarkersConfig struct {
	Doctor  string
	Patient string
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel    string
	MetricsPort string
}

// Load reads configuration from the environment. Invalid values fall back to
// defaults rather than failing.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-clinical-transcription")

	return &Config{
		Service: ServiceConfig{
			Principal: principal,
			HTTPPort:  envOrDefault("HTTP_PORT", "8080"),
		},
		Remote: RemoteConfig{
			Provider: envOrDefault("REMOTE_PROVIDER", "mock"),
			Endpoint: envOrDefault("REMOTE_ENDPOINT", ""),
			Timeout:  envOrDefaultDuration("REMOTE_TIMEOUT", 2*time.Minute),
		},
		Storage: StorageConfig{
			Bucket: envOrDefault("GCS_BUCKET_NAME", ""),
		},
		Kafka: KafkaConfig{
			Enabled:        envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:        envOrDefaultList("KAFKA_BROKERS", nil),
			TopicCompleted: envOrDefault("KAFKA_TOPIC_COMPLETED", "consultation.transcription.completed"),
			TopicFailed:    envOrDefault("KAFKA_TOPIC_FAILED", "consultation.transcription.failed"),
			Principal:      envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Markers: MarkersConfig{
			Doctor:  envOrDefault("SPEAKER_MARKER_DOCTOR", "Doctor"),
			Patient: envOrDefault("SPEAKER_MARKER_PATIENT", "Paciente"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return parsed
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return parsed
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
