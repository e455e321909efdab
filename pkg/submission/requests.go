package submission

import "time"

// SubmitFileRequest carries one raw upload into the intake pipeline.
type SubmitFileRequest struct {
	ContentType string
	Body        []byte
	Claims      Claims
	SourceIP    string
	UserAgent   string
}

// SubmitFileResponse is the success payload of an intake run.
type SubmitFileResponse struct {
	SubmissionID    string           `json:"submission_id"`
	FileName        string           `json:"file_name"`
	FileSize        int64            `json:"file_size"`
	SHA256Hash      string           `json:"sha256_hash"`
	UploadTimestamp time.Time        `json:"upload_timestamp"`
	Status          SubmissionStatus `json:"status"`
}

// GetSubmissionRequest asks for one record on behalf of a caller.
type GetSubmissionRequest struct {
	SubmissionID string
	Claims       Claims
	SourceIP     string
	UserAgent    string
}

// SubmissionView is the sanitized external projection of a Record.
// Internal bookkeeping fields never appear here.
type SubmissionView struct {
	SubmissionID    string           `json:"submission_id"`
	StudentID       string           `json:"student_id"`
	CourseID        string           `json:"course_id"`
	SectionID       string           `json:"section_id"`
	StorageLocation string           `json:"file_path"`
	FileName        string           `json:"file_name"`
	FileSize        int64            `json:"file_size"`
	FileType        string           `json:"file_type"`
	SHA256Hash      string           `json:"sha256_hash"`
	UploadTimestamp time.Time        `json:"upload_timestamp"`
	Status          SubmissionStatus `json:"status"`
	UploaderID      string           `json:"user_id"`
	UploaderEmail   string           `json:"email"`
}

// StatusView is the thin projection served by the status endpoint.
type StatusView struct {
	SubmissionID    string           `json:"submission_id"`
	Status          SubmissionStatus `json:"status"`
	UploadTimestamp time.Time        `json:"upload_timestamp"`
}

// sanitize strips the internal-only fields from a record.
func sanitize(r *Record) *SubmissionView {
	return &SubmissionView{
		SubmissionID:    r.SubmissionID.String(),
		StudentID:       r.StudentID,
		CourseID:        r.CourseID,
		SectionID:       r.SectionID,
		StorageLocation: r.StorageLocation,
		FileName:        r.FileName,
		FileSize:        r.FileSize,
		FileType:        r.FileType,
		SHA256Hash:      r.SHA256Hash,
		UploadTimestamp: r.UploadTimestamp,
		Status:          r.Status,
		UploaderID:      r.UploaderID,
		UploaderEmail:   r.UploaderEmail,
	}
}
