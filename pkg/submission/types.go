package submission

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus represents the lifecycle status of a submission record
type SubmissionStatus string

const (
	// StatusUploaded is the initial status assigned at intake
	StatusUploaded SubmissionStatus = "uploaded"

	// StatusProcessing indicates downstream processing has picked up the submission
	StatusProcessing SubmissionStatus = "processing"

	// StatusGraded indicates grading has completed
	StatusGraded SubmissionStatus = "graded"
)

// EventType classifies an audit event
type EventType string

const (
	EventUpload   EventType = "UPLOAD"
	EventAccess   EventType = "ACCESS"
	EventDownload EventType = "DOWNLOAD"
	EventDelete   EventType = "DELETE"
)

// ValidEventTypes is the set of event types the audit recorder accepts
var ValidEventTypes = map[EventType]struct{}{
	EventUpload:   {},
	EventAccess:   {},
	EventDownload: {},
	EventDelete:   {},
}

// Part is one decoded segment of a multipart/form-data body.
// Filename is nil for plain form fields; file parts carry a non-nil
// filename which may legitimately be the empty string.
type Part struct {
	Name     string
	Value    []byte
	Filename *string
}

// ValidatedSubmission is the output of the validation chain. It lives only
// for the duration of one intake invocation and is never persisted as-is.
type ValidatedSubmission struct {
	FileContent []byte
	FileName    string
	Extension   string // lower-cased, includes the leading dot
	FileSize    int64
	StudentID   string
	CourseID    string
	SectionID   string
}

// Record is the durable metadata entity for one stored submission.
// SubmissionID is immutable once written; Status is the only field
// mutated after creation.
type Record struct {
	SubmissionID    uuid.UUID
	StudentID       string
	CourseID        string
	SectionID       string
	StorageLocation string // e.g. "s3://bucket/submissions/..."
	StorageKey      string // raw object key within the blob store
	FileName        string
	FileSize        int64
	FileType        string // lower-cased extension
	SHA256Hash      string
	UploadTimestamp time.Time
	Status          SubmissionStatus
	UploaderID      string
	UploaderEmail   string

	// Internal bookkeeping, stripped from every external projection.
	SchemaVersion int
	ExpiresAt     *time.Time
	InternalFlags []string
}

// AuditEvent is one append-only audit trail entry. Events reference a
// submission by id only; no enforced foreign key.
type AuditEvent struct {
	AuditID      uuid.UUID
	EventType    EventType
	ActorID      string
	SubmissionID string
	Timestamp    time.Time
	SourceIP     string
	UserAgent    string
	Metadata     map[string]any
}

// Claims carries the caller identity asserted by the edge authorizer.
// Groups is the raw group-membership claim and may be comma- or
// whitespace-separated; it is normalized by the access engine.
type Claims struct {
	Subject string
	Email   string
	Groups  string
}

// Identified reports whether the claims name a concrete caller.
func (c Claims) Identified() bool {
	return c.Subject != ""
}
