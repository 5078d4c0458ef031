// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinical_transcription"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Pipeline run metrics
	RunsTotal   prometheus.Counter
	RunsActive  prometheus.Gauge
	RunsSuccess prometheus.Counter
	RunsFailed  prometheus.Counter
	RunDuration prometheus.Histogram

	// Remote stage metrics
	StageLatency *prometheus.HistogramVec
	StageErrors  *prometheus.CounterVec

	// Segmentation metrics
	SegmentationFallbacks prometheus.Counter
	ExchangesSegmented    prometheus.Counter

	// Validation metrics
	CorrectionsReported  prometheus.Counter
	MedicalImpactReports prometheus.Counter
	ValidationFallbacks  prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// Storage metrics
	StorageBytesUploaded   prometheus.Counter
	StorageBytesDownloaded prometheus.Counter
	StorageErrors          *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of pipeline runs started",
		}),
		RunsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_active",
			Help:      "Number of currently running pipelines",
		}),
		RunsSuccess: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_success_total",
			Help:      "Total number of pipeline runs that completed all stages",
		}),
		RunsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_failed_total",
			Help:      "Total number of pipeline runs aborted by a stage failure",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "End-to-end duration of pipeline runs in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),

		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_seconds",
			Help:      "Remote stage latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"stage"}),
		StageErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Total number of remote stage failures",
		}, []string{"stage", "error_type"}),

		SegmentationFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segmentation_fallbacks_total",
			Help:      "Total number of transcripts that degraded to the raw-text fallback",
		}),
		ExchangesSegmented: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchanges_segmented_total",
			Help:      "Total number of doctor/patient exchanges produced by segmentation",
		}),

		CorrectionsReported: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrections_reported_total",
			Help:      "Total number of corrections reported by the validate stage",
		}),
		MedicalImpactReports: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrections_medical_impact_total",
			Help:      "Total number of corrections flagged with medical impact",
		}),
		ValidationFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_fallbacks_total",
			Help:      "Total number of validate responses missing the validation fields",
		}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		StorageBytesUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_bytes_uploaded_total",
			Help:      "Total audio bytes uploaded to object storage",
		}),
		StorageBytesDownloaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_bytes_downloaded_total",
			Help:      "Total audio bytes streamed from object storage",
		}),
		StorageErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Total number of object storage errors",
		}, []string{"operation"}),

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"method", "code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"method"}),
	}
}

// RecordRunStart records a pipeline run starting.
func (m *Metrics) RecordRunStart() {
	m.RunsTotal.Inc()
	m.RunsActive.Inc()
}

// RecordRunEnd records a pipeline run terminating.
func (m *Metrics) RecordRunEnd(success bool, durationSeconds float64) {
	m.RunsActive.Dec()
	m.RunDuration.Observe(durationSeconds)
	if success {
		m.RunsSuccess.Inc()
	} else {
		m.RunsFailed.Inc()
	}
}

// RecordStage records one remote stage attempt.
func (m *Metrics) RecordStage(stage string, err error, latencySeconds float64) {
	m.StageLatency.WithLabelValues(stage).Observe(latencySeconds)
	if err != nil {
		m.StageErrors.WithLabelValues(stage, "remote").Inc()
	}
}

// RecordStageError records a stage failure with a specific error type.
func (m *Metrics) RecordStageError(stage, errorType string) {
	m.StageErrors.WithLabelValues(stage, errorType).Inc()
}

// RecordSegmentation records the result of segmenting one transcript.
func (m *Metrics) RecordSegmentation(exchanges int, fellBack bool) {
	m.ExchangesSegmented.Add(float64(exchanges))
	if fellBack {
		m.SegmentationFallbacks.Inc()
	}
}

// RecordValidation records the extracted validation result.
func (m *Metrics) RecordValidation(corrections, medicalImpact int, fellBack bool) {
	m.CorrectionsReported.Add(float64(corrections))
	m.MedicalImpactReports.Add(float64(medicalImpact))
	if fellBack {
		m.ValidationFallbacks.Inc()
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordUpload records bytes uploaded to object storage.
func (m *Metrics) RecordUpload(bytes int64) {
	m.StorageBytesUploaded.Add(float64(bytes))
}

// RecordDownload records bytes streamed from object storage.
func (m *Metrics) RecordDownload(bytes int64) {
	m.StorageBytesDownloaded.Add(float64(bytes))
}

// RecordStorageError records an object storage failure.
func (m *Metrics) RecordStorageError(operation string) {
	m.StorageErrors.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, code string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, code).Inc()
	m.HTTPRequestDuration.WithLabelValues(method).Observe(durationSeconds)
}
