package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"lingkod/internal/registration/models"
	"lingkod/pkg/domain"
	"lingkod/pkg/platform/sentinel"
)

// InMemory mirrors the Postgres store's semantics, including the
// affected-rows discipline on conditional updates.
type InMemory struct {
	mu            sync.Mutex
	registrations map[domain.RegistrationID]*models.PendingRegistration
	residents     map[domain.ResidentID]*models.Resident
}

func NewInMemory() *InMemory {
	return &InMemory{
		registrations: make(map[domain.RegistrationID]*models.PendingRegistration),
		residents:     make(map[domain.ResidentID]*models.Resident),
	}
}

func (s *InMemory) Insert(_ context.Context, reg *models.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[reg.ID]; ok {
		return sentinel.ErrDuplicate
	}
	clone := *reg
	s.registrations[reg.ID] = &clone
	return nil
}

func (s *InMemory) GetByID(_ context.Context, tenantID domain.TenantID, id domain.RegistrationID) (*models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok || reg.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	clone := *reg
	return &clone, nil
}

func (s *InMemory) List(_ context.Context, tenantID domain.TenantID, status models.Status, limit int) ([]*models.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.PendingRegistration, 0)
	for _, reg := range s.registrations {
		if reg.TenantID != tenantID {
			continue
		}
		if status != "" && reg.Status != status {
			continue
		}
		clone := *reg
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) ClaimApproval(_ context.Context, tenantID domain.TenantID, id domain.RegistrationID, processedBy string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok || reg.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	if reg.Status != models.StatusPending {
		return sentinel.ErrConflict
	}
	reg.Status = models.StatusApproved
	reg.ProcessedBy = processedBy
	processedAt := now
	reg.ProcessedAt = &processedAt
	return nil
}

func (s *InMemory) RevertToPending(_ context.Context, tenantID domain.TenantID, id domain.RegistrationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok || reg.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	reg.Status = models.StatusPending
	reg.ProcessedBy = ""
	reg.ProcessedAt = nil
	return nil
}

func (s *InMemory) UpdateStatus(_ context.Context, tenantID domain.TenantID, id domain.RegistrationID, status models.Status, processedBy string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[id]
	if !ok || reg.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	if reg.Status != models.StatusPending {
		return sentinel.ErrConflict
	}
	reg.Status = status
	reg.ProcessedBy = processedBy
	processedAt := now
	reg.ProcessedAt = &processedAt
	return nil
}

func (s *InMemory) FindDuplicateResident(_ context.Context, tenantID domain.TenantID, firstName, lastName string, birthdate time.Time) (*models.Resident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, res := range s.residents {
		if res.TenantID != tenantID {
			continue
		}
		if strings.EqualFold(res.FirstName, firstName) &&
			strings.EqualFold(res.LastName, lastName) &&
			sameDate(res.Birthdate, birthdate) {
			clone := *res
			return &clone, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) InsertResident(_ context.Context, res *models.Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.residents[res.ID]; ok {
		return sentinel.ErrDuplicate
	}
	clone := *res
	s.residents[res.ID] = &clone
	return nil
}

func (s *InMemory) GetResident(_ context.Context, tenantID domain.TenantID, id domain.ResidentID) (*models.Resident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.residents[id]
	if !ok || res.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	clone := *res
	return &clone, nil
}

func (s *InMemory) UpdateResidentPhoto(_ context.Context, tenantID domain.TenantID, id domain.ResidentID, photoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.residents[id]
	if !ok || res.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	res.PhotoURL = photoURL
	return nil
}

func (s *InMemory) SearchResidents(_ context.Context, tenantID domain.TenantID, query string, limit int) ([]*models.Resident, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Resident, 0)
	for _, res := range s.residents {
		if res.TenantID != tenantID {
			continue
		}
		if matchesAllTerms(res, terms) {
			clone := *res
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matchesAllTerms(res *models.Resident, terms []string) bool {
	haystack := strings.ToLower(res.FirstName + " " + res.MiddleName + " " + res.LastName)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
