package submission

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository     Repository
	blobStore      BlobStore
	auditSink      AuditSink
	validation     ValidationConfig
	accessPolicy   AccessPolicy
	locationPrefix string
	logger         *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the metadata repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage backend
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithAuditSink sets the audit sink. Without one, audit dispatch is a no-op.
func WithAuditSink(sink AuditSink) Option {
	return func(s *service) {
		s.auditSink = sink
	}
}

// WithValidationConfig overrides the default extension allow-list and size ceiling
func WithValidationConfig(cfg ValidationConfig) Option {
	return func(s *service) {
		s.validation = cfg
	}
}

// WithAccessPolicy overrides the default role groups
func WithAccessPolicy(policy AccessPolicy) Option {
	return func(s *service) {
		s.accessPolicy = policy
	}
}

// WithStorageLocation sets the location prefix recorded alongside the
// object key, e.g. "s3://raw-submissions".
func WithStorageLocation(prefix string) Option {
	return func(s *service) {
		s.locationPrefix = prefix
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		validation: ValidationConfig{
			AllowedExtensions: DefaultAllowedExtensions(),
			MaxSizeBytes:      DefaultMaxSizeBytes,
		},
		accessPolicy: DefaultAccessPolicy(),
		logger:       slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

// SubmitFile sequences the intake pipeline. Decoder and validator
// failures return before any side effect; a blob write failure aborts
// before the metadata write so no record can point at a missing blob; a
// metadata write failure leaves the blob in place for later
// reconciliation rather than attempting a compensating delete.
func (s *service) SubmitFile(ctx context.Context, req SubmitFileRequest) (*SubmitFileResponse, error) {
	actorID := req.Claims.Subject
	if actorID == "" {
		actorID = "anonymous"
	}
	actorEmail := req.Claims.Email
	if actorEmail == "" {
		actorEmail = "unknown"
	}

	s.logger.Info("intake request received",
		"user_id", actorID,
		"email", actorEmail)

	parts, err := ParseMultipart(req.ContentType, req.Body)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	validated, err := Validate(parts, s.validation)
	if err != nil {
		return nil, err
	}

	// Identifier and timestamp are generated only after validation.
	submissionID := uuid.New()
	sha256Hash := Fingerprint(validated.FileContent)
	uploadedAt := time.Now().UTC()

	objectKey := fmt.Sprintf("submissions/%s/%s/%s",
		validated.StudentID, submissionID, validated.FileName)

	s.logger.Info("processing submission",
		"submission_id", submissionID,
		"student_id", validated.StudentID,
		"file_name", validated.FileName,
		"file_size", validated.FileSize,
		"sha256_hash", sha256Hash)

	err = s.blobStore.UploadWithParams(ctx, bytes.NewReader(validated.FileContent), UploadParams{
		ObjectKey: objectKey,
		MimeType:  "application/octet-stream",
		Metadata: map[string]string{
			"submission_id": submissionID.String(),
			"student_id":    validated.StudentID,
			"sha256":        sha256Hash,
		},
	})
	if err != nil {
		return nil, &StorageError{Key: objectKey, Op: "upload", Err: err}
	}

	record := &Record{
		SubmissionID:    submissionID,
		StudentID:       validated.StudentID,
		CourseID:        validated.CourseID,
		SectionID:       validated.SectionID,
		StorageLocation: s.storageLocation(objectKey),
		StorageKey:      objectKey,
		FileName:        validated.FileName,
		FileSize:        validated.FileSize,
		FileType:        validated.Extension,
		SHA256Hash:      sha256Hash,
		UploadTimestamp: uploadedAt,
		Status:          StatusUploaded,
		UploaderID:      actorID,
		UploaderEmail:   actorEmail,
		SchemaVersion:   1,
	}

	if err := s.repository.CreateSubmission(ctx, record); err != nil {
		// The blob stays addressable under objectKey for reconciliation.
		return nil, &RepositoryError{SubmissionID: submissionID.String(), Op: "create", Err: err}
	}

	s.emitAudit(ctx, &AuditEvent{
		EventType:    EventUpload,
		ActorID:      actorID,
		SubmissionID: submissionID.String(),
		SourceIP:     req.SourceIP,
		UserAgent:    req.UserAgent,
		Metadata: map[string]any{
			"email":       actorEmail,
			"course_id":   validated.CourseID,
			"section_id":  validated.SectionID,
			"file_name":   validated.FileName,
			"file_size":   validated.FileSize,
			"sha256_hash": sha256Hash,
		},
	})

	s.logger.Info("submission processed successfully", "submission_id", submissionID)

	return &SubmitFileResponse{
		SubmissionID:    submissionID.String(),
		FileName:        validated.FileName,
		FileSize:        validated.FileSize,
		SHA256Hash:      sha256Hash,
		UploadTimestamp: uploadedAt,
		Status:          StatusUploaded,
	}, nil
}

// GetSubmission enforces the access decision before returning the
// sanitized projection. The caller must be identified before any lookup
// happens so record existence never leaks to unauthenticated callers.
func (s *service) GetSubmission(ctx context.Context, req GetSubmissionRequest) (*SubmissionView, error) {
	if !req.Claims.Identified() {
		return nil, ErrUnidentifiedCaller
	}

	id, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		return nil, ErrSubmissionNotFound
	}

	record, err := s.repository.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := s.accessPolicy.Decide(req.Claims, record)
	if !decision.Allowed {
		s.logger.Warn("submission access denied",
			"user_id", req.Claims.Subject,
			"submission_id", req.SubmissionID,
			"owner_id", record.StudentID)
		return nil, ErrAccessDenied
	}

	s.logger.Info("submission access granted",
		"user_id", req.Claims.Subject,
		"submission_id", req.SubmissionID,
		"tier", decision.Tier)

	s.emitAudit(ctx, &AuditEvent{
		EventType:    EventAccess,
		ActorID:      req.Claims.Subject,
		SubmissionID: req.SubmissionID,
		SourceIP:     req.SourceIP,
		UserAgent:    req.UserAgent,
		Metadata: map[string]any{
			"email":  req.Claims.Email,
			"action": "get_metadata",
			"tier":   string(decision.Tier),
		},
	})

	return sanitize(record), nil
}

// GetSubmissionStatus returns only the processing status. Role checks are
// owned by the edge here; absence still maps to not-found.
func (s *service) GetSubmissionStatus(ctx context.Context, submissionID string) (*StatusView, error) {
	id, err := uuid.Parse(submissionID)
	if err != nil {
		return nil, ErrSubmissionNotFound
	}

	record, err := s.repository.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}

	return &StatusView{
		SubmissionID:    record.SubmissionID.String(),
		Status:          record.Status,
		UploadTimestamp: record.UploadTimestamp,
	}, nil
}

func (s *service) storageLocation(objectKey string) string {
	if s.locationPrefix == "" {
		return objectKey
	}
	return s.locationPrefix + "/" + objectKey
}

// emitAudit dispatches one audit event and swallows any failure; audit
// delivery never changes the response returned to the caller.
func (s *service) emitAudit(ctx context.Context, event *AuditEvent) {
	if s.auditSink == nil {
		return
	}
	if err := s.auditSink.Emit(ctx, event); err != nil {
		s.logger.Error("failed to emit audit event",
			"event_type", event.EventType,
			"submission_id", event.SubmissionID,
			"error", err)
	}
}
