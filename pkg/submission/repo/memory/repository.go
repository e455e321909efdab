package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/submission-intake/pkg/submission"
)

// Repository implements submission.Repository using in-memory storage
type Repository struct {
	mu          sync.RWMutex
	records     map[uuid.UUID]*submission.Record
	auditEvents map[string][]*submission.AuditEvent // submission_id -> events
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		records:     make(map[uuid.UUID]*submission.Record),
		auditEvents: make(map[string][]*submission.AuditEvent),
	}
}

// Submission record operations

func (r *Repository) CreateSubmission(ctx context.Context, record *submission.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	recordCopy := *record
	r.records[record.SubmissionID] = &recordCopy

	return nil
}

func (r *Repository) GetSubmission(ctx context.Context, id uuid.UUID) (*submission.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return nil, submission.ErrSubmissionNotFound
	}

	recordCopy := *record
	return &recordCopy, nil
}

func (r *Repository) UpdateSubmissionStatus(ctx context.Context, id uuid.UUID, status submission.SubmissionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return submission.ErrSubmissionNotFound
	}

	record.Status = status
	return nil
}

// Audit trail operations

func (r *Repository) CreateAuditEvent(ctx context.Context, event *submission.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	eventCopy := *event
	r.auditEvents[event.SubmissionID] = append(r.auditEvents[event.SubmissionID], &eventCopy)

	return nil
}

func (r *Repository) ListAuditEvents(ctx context.Context, submissionID string) ([]*submission.AuditEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.auditEvents[submissionID]
	result := make([]*submission.AuditEvent, 0, len(events))
	for _, event := range events {
		eventCopy := *event
		result = append(result, &eventCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

// Expire marks a record with an expiry time. Used by retention tooling;
// expired records remain readable until swept externally.
func (r *Repository) Expire(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return submission.ErrSubmissionNotFound
	}

	record.ExpiresAt = &at
	return nil
}
