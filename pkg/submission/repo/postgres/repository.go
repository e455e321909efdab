package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/submission-intake/pkg/submission"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements submission.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("submission already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Submission record operations

func (r *Repository) CreateSubmission(ctx context.Context, record *submission.Record) error {
	query := `
		INSERT INTO submission (
			submission_id, student_id, course_id, section_id,
			storage_location, storage_key, file_name, file_size, file_type,
			sha256_hash, upload_timestamp, status, uploader_id, uploader_email,
			schema_version, expires_at, internal_flags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.Exec(ctx, query,
		record.SubmissionID, record.StudentID, record.CourseID, record.SectionID,
		record.StorageLocation, record.StorageKey, record.FileName, record.FileSize, record.FileType,
		record.SHA256Hash, record.UploadTimestamp, record.Status, record.UploaderID, record.UploaderEmail,
		record.SchemaVersion, record.ExpiresAt, record.InternalFlags)

	if err != nil {
		return r.handlePostgresError("create submission", err)
	}

	return nil
}

func (r *Repository) GetSubmission(ctx context.Context, id uuid.UUID) (*submission.Record, error) {
	query := `
		SELECT submission_id, student_id, course_id, section_id,
		       storage_location, storage_key, file_name, file_size, file_type,
		       sha256_hash, upload_timestamp, status, uploader_id, uploader_email,
		       schema_version, expires_at, internal_flags
		FROM submission WHERE submission_id = $1`

	var record submission.Record
	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.SubmissionID, &record.StudentID, &record.CourseID, &record.SectionID,
		&record.StorageLocation, &record.StorageKey, &record.FileName, &record.FileSize, &record.FileType,
		&record.SHA256Hash, &record.UploadTimestamp, &record.Status, &record.UploaderID, &record.UploaderEmail,
		&record.SchemaVersion, &record.ExpiresAt, &record.InternalFlags)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, submission.ErrSubmissionNotFound
		}
		return nil, r.handlePostgresError("get submission", err)
	}

	return &record, nil
}

func (r *Repository) UpdateSubmissionStatus(ctx context.Context, id uuid.UUID, status submission.SubmissionStatus) error {
	query := `UPDATE submission SET status = $2 WHERE submission_id = $1`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return r.handlePostgresError("update submission status", err)
	}
	if tag.RowsAffected() == 0 {
		return submission.ErrSubmissionNotFound
	}

	return nil
}

// Audit trail operations

func (r *Repository) CreateAuditEvent(ctx context.Context, event *submission.AuditEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	query := `
		INSERT INTO audit_event (
			audit_id, event_type, actor_id, submission_id,
			event_timestamp, source_ip, user_agent, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		event.AuditID, event.EventType, event.ActorID, event.SubmissionID,
		event.Timestamp, event.SourceIP, event.UserAgent, metadata)

	if err != nil {
		return r.handlePostgresError("create audit event", err)
	}

	return nil
}

func (r *Repository) ListAuditEvents(ctx context.Context, submissionID string) ([]*submission.AuditEvent, error) {
	query := `
		SELECT audit_id, event_type, actor_id, submission_id,
		       event_timestamp, source_ip, user_agent, metadata
		FROM audit_event
		WHERE submission_id = $1
		ORDER BY event_timestamp ASC`

	rows, err := r.db.Query(ctx, query, submissionID)
	if err != nil {
		return nil, r.handlePostgresError("list audit events", err)
	}
	defer rows.Close()

	var events []*submission.AuditEvent
	for rows.Next() {
		var event submission.AuditEvent
		var metadata []byte
		var ts time.Time

		err := rows.Scan(
			&event.AuditID, &event.EventType, &event.ActorID, &event.SubmissionID,
			&ts, &event.SourceIP, &event.UserAgent, &metadata)
		if err != nil {
			return nil, r.handlePostgresError("scan audit event", err)
		}
		event.Timestamp = ts

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list audit events", err)
	}

	return events, nil
}
