package submission

import "context"

// Service is the submission intake and read surface.
type Service interface {
	// SubmitFile runs the intake pipeline: decode, validate, fingerprint,
	// store blob, write metadata, best-effort audit.
	SubmitFile(ctx context.Context, req SubmitFileRequest) (*SubmitFileResponse, error)

	// GetSubmission returns the sanitized record when the caller's claims
	// allow it, emitting a best-effort ACCESS audit event.
	GetSubmission(ctx context.Context, req GetSubmissionRequest) (*SubmissionView, error)

	// GetSubmissionStatus returns the thin status projection.
	GetSubmissionStatus(ctx context.Context, submissionID string) (*StatusView, error)
}
