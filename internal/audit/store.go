package audit

import (
	"context"
	"sync"
)

// Store is an append-only event log.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]Event, error)
}

// MemoryStore keeps events in process. Used in tests and as the default sink
// when no durable log is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListByTenant(_ context.Context, tenantID string, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, limit)
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].TenantID != tenantID {
			continue
		}
		out = append(out, s.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
