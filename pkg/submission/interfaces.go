package submission

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for file storage backends
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error

	// GetObjectMeta retrieves metadata for a stored object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// Repository defines the interface for submission and audit persistence
type Repository interface {
	// Submission record operations
	CreateSubmission(ctx context.Context, record *Record) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*Record, error)
	UpdateSubmissionStatus(ctx context.Context, id uuid.UUID, status SubmissionStatus) error

	// Audit trail operations (append-only)
	CreateAuditEvent(ctx context.Context, event *AuditEvent) error
	ListAuditEvents(ctx context.Context, submissionID string) ([]*AuditEvent, error)
}

// AuditSink accepts audit events. Implementations own delivery
// durability; callers treat Emit as best-effort and never propagate its
// failure to the client.
type AuditSink interface {
	Emit(ctx context.Context, event *AuditEvent) error
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
	Metadata  map[string]string
}

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
	Metadata    map[string]string
}
