package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %s", cfg.Service.HTTPPort)
	}
	if cfg.Remote.Provider != "mock" {
		t.Errorf("Provider = %s", cfg.Remote.Provider)
	}
	if cfg.Remote.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %s", cfg.Remote.Timeout)
	}
	if cfg.Kafka.Enabled {
		t.Error("Kafka must default to disabled")
	}
	if cfg.Markers.Doctor != "Doctor" || cfg.Markers.Patient != "Paciente" {
		t.Errorf("Markers = %+v", cfg.Markers)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("LogLevel = %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("REMOTE_PROVIDER", "scriba")
	t.Setenv("REMOTE_ENDPOINT", "https://controller.example.com/api/remote")
	t.Setenv("REMOTE_TIMEOUT", "90s")
	t.Setenv("GCS_BUCKET_NAME", "consultas")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SPEAKER_MARKER_DOCTOR", "Médico")

	cfg := Load()

	if cfg.Remote.Provider != "scriba" {
		t.Errorf("Provider = %s", cfg.Remote.Provider)
	}
	if cfg.Remote.Endpoint != "https://controller.example.com/api/remote" {
		t.Errorf("Endpoint = %s", cfg.Remote.Endpoint)
	}
	if cfg.Remote.Timeout != 90*time.Second {
		t.Errorf("Timeout = %s", cfg.Remote.Timeout)
	}
	if cfg.Storage.Bucket != "consultas" {
		t.Errorf("Bucket = %s", cfg.Storage.Bucket)
	}
	if !cfg.Kafka.Enabled {
		t.Error("Kafka should be enabled")
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Markers.Doctor != "Médico" {
		t.Errorf("Doctor marker = %s", cfg.Markers.Doctor)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REMOTE_TIMEOUT", "not-a-duration")
	t.Setenv("KAFKA_ENABLED", "not-a-bool")
	t.Setenv("KAFKA_BROKERS", " , ,")

	cfg := Load()

	if cfg.Remote.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %s, want default", cfg.Remote.Timeout)
	}
	if cfg.Kafka.Enabled {
		t.Error("invalid bool must fall back to default")
	}
	if cfg.Kafka.Brokers != nil {
		t.Errorf("Brokers = %v, want nil", cfg.Kafka.Brokers)
	}
}

func TestLoad_KafkaPrincipalInheritsServicePrincipal(t *testing.T) {
	t.Setenv("SERVICE_PRINCIPAL", "svc-test")

	cfg := Load()

	if cfg.Kafka.Principal != "svc-test" {
		t.Errorf("Kafka principal = %s", cfg.Kafka.Principal)
	}
}
