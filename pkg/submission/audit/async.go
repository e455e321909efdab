package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tendant/submission-intake/pkg/submission"
)

const defaultQueueSize = 256

// AsyncSink decouples audit emission from delivery. Emit enqueues
// without waiting for the wrapped sink; a single worker drains the queue
// in the background. Delivery failures are logged and dropped, matching
// the fire-and-forget contract of the audit boundary. A full queue also
// drops the event rather than blocking a request.
type AsyncSink struct {
	delegate submission.AuditSink
	queue    chan *submission.AuditEvent
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewAsyncSink starts the background worker wrapping delegate.
func NewAsyncSink(delegate submission.AuditSink, logger *slog.Logger) *AsyncSink {
	if logger == nil {
		logger = slog.Default()
	}
	s := &AsyncSink{
		delegate: delegate,
		queue:    make(chan *submission.AuditEvent, defaultQueueSize),
		logger:   logger,
		done:     make(chan struct{}),
	}

	go s.run()

	return s
}

// Emit enqueues the event and returns immediately. It never reports a
// delivery failure.
func (s *AsyncSink) Emit(_ context.Context, event *submission.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("audit sink closed, dropping event",
			"event_type", event.EventType,
			"submission_id", event.SubmissionID)
		return nil
	}

	select {
	case s.queue <- event:
	default:
		s.logger.Warn("audit queue full, dropping event",
			"event_type", event.EventType,
			"submission_id", event.SubmissionID)
	}
	return nil
}

// Close stops accepting events, drains the queue, and waits for the
// worker to exit.
func (s *AsyncSink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	<-s.done
}

func (s *AsyncSink) run() {
	defer close(s.done)

	for event := range s.queue {
		// Detached from the request context: the request does not wait
		// for delivery and must not cancel it.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.delegate.Emit(ctx, event); err != nil {
			s.logger.Error("async audit delivery failed",
				"event_type", event.EventType,
				"submission_id", event.SubmissionID,
				"error", err)
		}
		cancel()
	}
}
