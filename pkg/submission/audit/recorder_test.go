package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/submission-intake/pkg/submission"
	"github.com/tendant/submission-intake/pkg/submission/audit"
	repomemory "github.com/tendant/submission-intake/pkg/submission/repo/memory"
)

func validEvent() *submission.AuditEvent {
	return &submission.AuditEvent{
		EventType:    submission.EventUpload,
		ActorID:      "student-123",
		SubmissionID: uuid.NewString(),
		SourceIP:     "203.0.113.10",
		UserAgent:    "go-test",
		Metadata:     map[string]any{"file_name": "homework.pdf"},
	}
}

func TestRecorderEmit(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a valid event", func(t *testing.T) {
		repo := repomemory.New()
		recorder := audit.NewRecorder(repo, nil)

		event := validEvent()
		require.NoError(t, recorder.Emit(ctx, event))

		assert.NotEqual(t, uuid.Nil, event.AuditID)
		assert.False(t, event.Timestamp.IsZero())

		stored, err := repo.ListAuditEvents(ctx, event.SubmissionID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, submission.EventUpload, stored[0].EventType)
		assert.Equal(t, "student-123", stored[0].ActorID)
	})

	t.Run("rejects unknown event types", func(t *testing.T) {
		recorder := audit.NewRecorder(repomemory.New(), nil)

		event := validEvent()
		event.EventType = "DELETE"

		err := recorder.Emit(ctx, event)
		assert.ErrorIs(t, err, submission.ErrInvalidEventType)
	})

	t.Run("rejects missing actor", func(t *testing.T) {
		recorder := audit.NewRecorder(repomemory.New(), nil)

		event := validEvent()
		event.ActorID = ""

		err := recorder.Emit(ctx, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "actor_id")
	})

	t.Run("rejects missing submission id", func(t *testing.T) {
		recorder := audit.NewRecorder(repomemory.New(), nil)

		event := validEvent()
		event.SubmissionID = ""

		err := recorder.Emit(ctx, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "submission_id")
	})

	t.Run("defaults source ip and user agent", func(t *testing.T) {
		repo := repomemory.New()
		recorder := audit.NewRecorder(repo, nil)

		event := validEvent()
		event.SourceIP = ""
		event.UserAgent = ""
		require.NoError(t, recorder.Emit(ctx, event))

		stored, err := repo.ListAuditEvents(ctx, event.SubmissionID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "unknown", stored[0].SourceIP)
		assert.Equal(t, "unknown", stored[0].UserAgent)
	})

	t.Run("keeps caller-stamped identifier", func(t *testing.T) {
		repo := repomemory.New()
		recorder := audit.NewRecorder(repo, nil)

		event := validEvent()
		stamped := uuid.New()
		event.AuditID = stamped
		require.NoError(t, recorder.Emit(ctx, event))

		assert.Equal(t, stamped, event.AuditID)
	})

	t.Run("surfaces repository failures", func(t *testing.T) {
		recorder := audit.NewRecorder(failingAuditRepo{}, nil)

		err := recorder.Emit(ctx, validEvent())
		assert.Error(t, err)
	})
}

// failingAuditRepo fails audit writes; the rest is unused.
type failingAuditRepo struct {
	submission.Repository
}

func (failingAuditRepo) CreateAuditEvent(context.Context, *submission.AuditEvent) error {
	return errors.New("audit store unavailable")
}

// stubSink records delivered events and can be primed with errors.
type stubSink struct {
	mu        sync.Mutex
	delivered []*submission.AuditEvent
	errs      chan error
}

func newStubSink() *stubSink {
	return &stubSink{errs: make(chan error, 16)}
}

func (s *stubSink) Emit(_ context.Context, event *submission.AuditEvent) error {
	s.mu.Lock()
	s.delivered = append(s.delivered, event)
	s.mu.Unlock()

	select {
	case err := <-s.errs:
		return err
	default:
		return nil
	}
}

func (s *stubSink) Delivered() []*submission.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*submission.AuditEvent(nil), s.delivered...)
}

func TestAsyncSink(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers enqueued events before close returns", func(t *testing.T) {
		delegate := newStubSink()
		sink := audit.NewAsyncSink(delegate, nil)

		for i := 0; i < 5; i++ {
			require.NoError(t, sink.Emit(ctx, validEvent()))
		}
		sink.Close()

		assert.Len(t, delegate.Delivered(), 5)
	})

	t.Run("swallows delegate failures", func(t *testing.T) {
		delegate := newStubSink()
		delegate.errs <- errors.New("delivery failed")
		sink := audit.NewAsyncSink(delegate, nil)

		require.NoError(t, sink.Emit(ctx, validEvent()))
		require.NoError(t, sink.Emit(ctx, validEvent()))
		sink.Close()

		assert.Len(t, delegate.Delivered(), 2)
	})

	t.Run("drops events after close without error", func(t *testing.T) {
		delegate := newStubSink()
		sink := audit.NewAsyncSink(delegate, nil)
		sink.Close()

		require.NoError(t, sink.Emit(ctx, validEvent()))

		time.Sleep(10 * time.Millisecond)
		assert.Empty(t, delegate.Delivered())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		sink := audit.NewAsyncSink(newStubSink(), nil)
		sink.Close()
		sink.Close()
	})
}
