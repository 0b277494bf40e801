package store

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"lingkod/internal/tenant/models"
	"lingkod/pkg/platform/sentinel"
)

// InMemory is the in-process tenant store used by tests and local runs.
type InMemory struct {
	mu      sync.RWMutex
	tenants []*models.Config

	// fetches counts store reads so resolver tests can assert the cache
	// actually prevented a fetch.
	fetches atomic.Int64
}

// NewInMemory builds an empty in-memory tenant store.
func NewInMemory(tenants ...*models.Config) *InMemory {
	return &InMemory{tenants: tenants}
}

// Add registers a tenant config.
func (s *InMemory) Add(cfg *models.Config) {
	s.mu.Lock()
	s.tenants = append(s.tenants, cfg)
	s.mu.Unlock()
}

// Fetches reports how many store reads have happened.
func (s *InMemory) Fetches() int64 {
	return s.fetches.Load()
}

func (s *InMemory) FindByDomain(_ context.Context, domain string) (*models.Config, error) {
	s.fetches.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tenants {
		if t.IsActive && strings.EqualFold(t.Domain, domain) {
			return t, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindBySlug(_ context.Context, slug string) (*models.Config, error) {
	s.fetches.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tenants {
		if t.IsActive && strings.EqualFold(t.Slug, slug) {
			return t, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindAnyActive(_ context.Context) (*models.Config, error) {
	s.fetches.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tenants {
		if t.IsActive {
			return t, nil
		}
	}
	return nil, sentinel.ErrNotFound
}
