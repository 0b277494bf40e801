package audit

import (
	"context"
	"log/slog"
)

// Queue decouples event emission from persistence: services Emit into a
// buffered channel and a Worker drains it into the Publisher. A full buffer
// drops the event with a warning rather than stalling the request path.
type Queue struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewQueue(size int, logger *slog.Logger) *Queue {
	return &Queue{inbox: make(chan Event, size), logger: logger}
}

// Emit enqueues the event. It never blocks.
func (q *Queue) Emit(_ context.Context, event Event) error {
	select {
	case q.inbox <- event:
	default:
		q.logger.Warn("audit queue full, dropping event", "action", event.Action)
	}
	return nil
}

// Inbox is the channel a Worker consumes.
func (q *Queue) Inbox() <-chan Event {
	return q.inbox
}
