package submission

import "strings"

// ValidationConfig holds the business rules applied to decoded parts.
type ValidationConfig struct {
	// AllowedExtensions is the lower-cased extension allow-list,
	// each entry including the leading dot (e.g. ".pdf").
	AllowedExtensions map[string]struct{}

	// MaxSizeBytes is the inclusive file size ceiling.
	MaxSizeBytes int64
}

// DefaultAllowedExtensions covers the file types students may submit.
func DefaultAllowedExtensions() map[string]struct{} {
	exts := []string{
		".pdf", ".docx", ".txt", ".py", ".java", ".cpp",
		".c", ".js", ".html", ".css", ".ipynb", ".tex",
	}
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

// DefaultMaxSizeBytes is 50 MiB.
const DefaultMaxSizeBytes int64 = 52428800

var requiredFields = []string{"student_id", "course_id", "section_id"}

// Validate applies the intake checks to decoded parts in fixed order,
// returning on the first failure: missing file, missing field, empty
// identifier, disallowed extension, oversize file.
func Validate(parts map[string]Part, cfg ValidationConfig) (*ValidatedSubmission, error) {
	file, ok := parts["file"]
	if !ok || file.Filename == nil {
		return nil, &ValidationError{Err: ErrMissingFile}
	}

	for _, field := range requiredFields {
		if _, ok := parts[field]; !ok {
			return nil, &ValidationError{Err: ErrMissingField, Detail: field}
		}
	}

	studentID := strings.TrimSpace(string(parts["student_id"].Value))
	courseID := strings.TrimSpace(string(parts["course_id"].Value))
	sectionID := strings.TrimSpace(string(parts["section_id"].Value))

	if studentID == "" || courseID == "" || sectionID == "" {
		return nil, &ValidationError{Err: ErrEmptyIdentifier}
	}

	ext := Extension(*file.Filename)
	if _, ok := cfg.AllowedExtensions[ext]; !ok {
		return nil, &ValidationError{Err: ErrDisallowedExtension, Detail: ext}
	}

	size := int64(len(file.Value))
	if size > cfg.MaxSizeBytes {
		return nil, &ValidationError{Err: ErrFileTooLarge, Detail: "exceeds configured maximum"}
	}

	return &ValidatedSubmission{
		FileContent: file.Value,
		FileName:    *file.Filename,
		Extension:   ext,
		FileSize:    size,
		StudentID:   studentID,
		CourseID:    courseID,
		SectionID:   sectionID,
	}, nil
}

// Extension returns the lower-cased extension of filename, including the
// dot, or "" when the filename has none. Matching against the allow-list
// is therefore case-insensitive.
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx == -1 {
		return ""
	}
	return strings.ToLower(filename[idx:])
}
