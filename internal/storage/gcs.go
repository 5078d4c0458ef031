// Package storage provides the object storage boundary for consultation
// audio blobs: upload of recordings and byte-stream download of anonymized
// results.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinical-transcription-service/internal/observability/logging"
	"clinical-transcription-service/internal/observability/metrics"
)

// defaultContentType is used when the stored object carries no content type.
const defaultContentType = "audio/mpeg"

// UploadedAudio describes a stored audio blob.
type UploadedAudio struct {
	Object string
	URL    string
}

// Store is the object storage boundary the HTTP surface consumes.
type Store interface {
	// Upload stores an audio blob under a collision-free name and returns
	// its public URL.
	Upload(ctx context.Context, r io.Reader, originalName, contentType string) (UploadedAudio, error)

	// Download streams a stored blob. The returned content type preserves
	// the blob's framing; the caller owns closing the reader.
	Download(ctx context.Context, url string) (io.ReadCloser, string, error)
}

// URL format: https://storage.googleapis.com/BUCKET_NAME/FILE_PATH
var gcsURLPattern = regexp.MustCompile(`storage\.googleapis\.com/([^/]+)/(.+)`)

// ParseURL extracts the bucket and object name from a public GCS URL.
func ParseURL(url string) (bucket, object string, err error) {
	m := gcsURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", "", fmt.Errorf("invalid storage URL: %s", url)
	}
	return m[1], m[2], nil
}

// GCSStore implements Store over Google Cloud Storage.
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewGCS creates a store backed by the given bucket. Credentials come from
// the environment (GOOGLE_APPLICATION_CREDENTIALS or workload identity).
func NewGCS(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{
		client:  client,
		bucket:  bucket,
		metrics: metrics.DefaultMetrics,
		log:     logging.WithComponent("storage"),
	}, nil
}

// Upload stores the blob under a uuid object name that keeps the original
// extension, recording the original name and upload time as object metadata.
func (s *GCSStore) Upload(ctx context.Context, r io.Reader, originalName, contentType string) (UploadedAudio, error) {
	object := objectName(originalName)

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"originalName": originalName,
		"uploadedAt":   time.Now().UTC().Format(time.RFC3339),
	}

	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		s.metrics.RecordStorageError("upload")
		return UploadedAudio{}, fmt.Errorf("write object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		s.metrics.RecordStorageError("upload")
		return UploadedAudio{}, fmt.Errorf("finalize object %s: %w", object, err)
	}

	s.metrics.RecordUpload(n)
	s.log.Info().
		Str("object", object).
		Str("originalName", originalName).
		Int64("bytes", n).
		Msg("audio uploaded")

	return UploadedAudio{
		Object: object,
		URL:    fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object),
	}, nil
}

// Download streams the object named by a public GCS URL, unmodified.
func (s *GCSStore) Download(ctx context.Context, url string) (io.ReadCloser, string, error) {
	bucket, object, err := ParseURL(url)
	if err != nil {
		return nil, "", err
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		s.metrics.RecordStorageError("download")
		return nil, "", fmt.Errorf("open object %s/%s: %w", bucket, object, err)
	}

	contentType := r.Attrs.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	s.metrics.RecordDownload(r.Attrs.Size)
	return r, contentType, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// objectName builds a collision-free object name keeping the original
// extension, defaulting to wav when the name has none.
func objectName(originalName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext == "" {
		ext = "wav"
	}
	return uuid.NewString() + "." + ext
}
