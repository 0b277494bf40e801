package notify

import (
	"context"
	"sync"

	"lingkod/pkg/platform/sentinel"
)

// SentMessage is one message captured by the in-memory sender.
type SentMessage struct {
	To      string
	Message string
}

// MemorySender captures messages for tests and local development.
type MemorySender struct {
	mu   sync.Mutex
	sent []SentMessage

	// FailNext makes the next send fail, for exercising the best-effort
	// delivery path.
	FailNext bool
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (m *MemorySender) Send(_ context.Context, to, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return sentinel.ErrUnavailable
	}
	m.sent = append(m.sent, SentMessage{To: to, Message: message})
	return nil
}

// Sent returns a copy of the captured messages.
func (m *MemorySender) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}
