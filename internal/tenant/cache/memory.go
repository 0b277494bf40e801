package cache

import (
	"context"
	"sync"
	"time"

	"lingkod/internal/tenant/models"
)

// Clock returns the current time. Injected for tests.
type Clock func() time.Time

type entry struct {
	cfg     *models.Config
	expires time.Time
}

// Memory is a process-local TTL cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   Clock
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) MemoryOption {
	return func(m *Memory) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewMemory builds an empty in-process cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (*models.Config, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.clock().After(e.expires) {
		return nil, false
	}
	return e.cfg, true
}

func (m *Memory) Set(_ context.Context, key string, cfg *models.Config, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = entry{cfg: cfg, expires: m.clock().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memory) Invalidate(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

func (m *Memory) InvalidateAll(_ context.Context) {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}
