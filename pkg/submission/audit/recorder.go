package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/submission-intake/pkg/submission"
)

// Recorder validates incoming audit events and persists them through the
// repository. It is the durable end of the audit pipeline; delivery
// retries belong to the repository's own driver configuration.
type Recorder struct {
	repository submission.Repository
	logger     *slog.Logger
}

// NewRecorder creates a recorder writing to repo.
func NewRecorder(repo submission.Repository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		repository: repo,
		logger:     logger,
	}
}

// Emit validates the event, stamps its identifier and timestamp, and
// appends it to the audit trail.
func (r *Recorder) Emit(ctx context.Context, event *submission.AuditEvent) error {
	if _, ok := submission.ValidEventTypes[event.EventType]; !ok {
		return fmt.Errorf("%w: %q", submission.ErrInvalidEventType, event.EventType)
	}
	if event.ActorID == "" {
		return fmt.Errorf("missing required field: actor_id")
	}
	if event.SubmissionID == "" {
		return fmt.Errorf("missing required field: submission_id")
	}

	if event.AuditID == uuid.Nil {
		event.AuditID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.SourceIP == "" {
		event.SourceIP = "unknown"
	}
	if event.UserAgent == "" {
		event.UserAgent = "unknown"
	}

	if err := r.repository.CreateAuditEvent(ctx, event); err != nil {
		r.logger.Error("failed to write audit event",
			"audit_id", event.AuditID,
			"event_type", event.EventType,
			"submission_id", event.SubmissionID,
			"error", err)
		return err
	}

	r.logger.Info("audit event written",
		"audit_id", event.AuditID,
		"event_type", event.EventType,
		"submission_id", event.SubmissionID)

	return nil
}
