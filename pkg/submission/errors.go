package submission

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrMissingBoundary indicates the multipart content type carried no boundary token
	ErrMissingBoundary = errors.New("missing boundary in content type")

	// ErrNotMultipart indicates the request body is not multipart/form-data
	ErrNotMultipart = errors.New("content type must be multipart/form-data")

	// ErrEmptyBody indicates an empty request body
	ErrEmptyBody = errors.New("empty request body")

	// ErrMissingFile indicates the file part is absent or has no filename
	ErrMissingFile = errors.New("missing required field: file")

	// ErrMissingField indicates a required form field is absent
	ErrMissingField = errors.New("missing required field")

	// ErrEmptyIdentifier indicates a required identifier field is blank after trimming
	ErrEmptyIdentifier = errors.New("student_id, course_id, and section_id must not be empty")

	// ErrDisallowedExtension indicates the file extension is not on the allow-list
	ErrDisallowedExtension = errors.New("invalid file type")

	// ErrFileTooLarge indicates the file exceeds the configured size ceiling
	ErrFileTooLarge = errors.New("file too large")

	// ErrSubmissionNotFound indicates no record exists for the requested id
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrUnidentifiedCaller indicates the claims carry no subject
	ErrUnidentifiedCaller = errors.New("unable to determine caller identity")

	// ErrAccessDenied indicates the caller is not authorized for the record
	ErrAccessDenied = errors.New("not authorized to access this submission")

	// ErrInvalidEventType indicates an audit event type outside the accepted set
	ErrInvalidEventType = errors.New("invalid audit event type")
)

// ValidationError wraps one failed intake validation check with the
// specific detail needed for the client-facing message.
type ValidationError struct {
	Err    error  // sentinel identifying the failed check
	Detail string // e.g. field name or offending extension
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageError represents a blob store failure during intake
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// RepositoryError represents a metadata store failure
type RepositoryError struct {
	SubmissionID string
	Op           string
	Err          error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository operation %s failed for submission %s: %v", e.Op, e.SubmissionID, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
