package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"lingkod/internal/clearance/models"
	"lingkod/pkg/domain"
	"lingkod/pkg/platform/sentinel"
)

// InMemory mirrors the Postgres store's semantics for tests.
type InMemory struct {
	mu          sync.Mutex
	submissions map[domain.SubmissionID]*models.Submission
}

func NewInMemory() *InMemory {
	return &InMemory{submissions: make(map[domain.SubmissionID]*models.Submission)}
}

func cloneSubmission(sub *models.Submission) *models.Submission {
	clone := *sub
	clone.FormData = make(map[string]string, len(sub.FormData))
	for k, v := range sub.FormData {
		clone.FormData[k] = v
	}
	return &clone
}

func (s *InMemory) Insert(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[sub.ID]; ok {
		return sentinel.ErrDuplicate
	}
	s.submissions[sub.ID] = cloneSubmission(sub)
	return nil
}

func (s *InMemory) GetByID(_ context.Context, tenantID domain.TenantID, id domain.SubmissionID) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok || sub.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	return cloneSubmission(sub), nil
}

func (s *InMemory) List(_ context.Context, tenantID domain.TenantID, status models.Status, limit, offset int) ([]*models.Submission, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*models.Submission, 0)
	for _, sub := range s.submissions {
		if sub.TenantID != tenantID {
			continue
		}
		if status != "" && sub.Status != status {
			continue
		}
		matched = append(matched, cloneSubmission(sub))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *InMemory) Transition(_ context.Context, tenantID domain.TenantID, id domain.SubmissionID, from, to models.Status, processedBy string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok || sub.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	if sub.Status != from {
		return sentinel.ErrConflict
	}
	sub.Status = to
	sub.ProcessedBy = processedBy
	processedAt := now
	sub.ProcessedAt = &processedAt
	return nil
}

func (s *InMemory) SetDocument(_ context.Context, tenantID domain.TenantID, id domain.SubmissionID, documentURL, processedBy string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok || sub.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	if sub.Status != models.StatusProcessing {
		return sentinel.ErrConflict
	}
	sub.Status = models.StatusApproved
	sub.DocumentURL = documentURL
	sub.ProcessedBy = processedBy
	processedAt := now
	sub.ProcessedAt = &processedAt
	return nil
}

func (s *InMemory) RevertToPending(_ context.Context, tenantID domain.TenantID, id domain.SubmissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok || sub.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	sub.Status = models.StatusPending
	sub.ProcessedBy = ""
	sub.ProcessedAt = nil
	return nil
}

func (s *InMemory) ListApprovedFacility(_ context.Context, tenantID domain.TenantID) ([]*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Submission, 0)
	for _, sub := range s.submissions {
		if sub.TenantID != tenantID {
			continue
		}
		if sub.ClearanceType != models.TypeFacility || sub.Status != models.StatusApproved {
			continue
		}
		out = append(out, cloneSubmission(sub))
	}
	return out, nil
}
