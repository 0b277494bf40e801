// Package store persists clearance submissions.
package store

import (
	"context"
	"time"

	"lingkod/internal/clearance/models"
	"lingkod/pkg/domain"
)

// Store is the clearance feature's persistence port. All operations are
// tenant-scoped.
type Store interface {
	Insert(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, tenantID domain.TenantID, id domain.SubmissionID) (*models.Submission, error)
	// List pages submissions newest first, optionally filtered by status,
	// and returns the total matching count for the pager.
	List(ctx context.Context, tenantID domain.TenantID, status models.Status, limit, offset int) ([]*models.Submission, int, error)

	// Transition moves a submission from one status to another with the
	// conditional-update discipline: zero affected rows on an existing id
	// means the expected source status no longer holds and the store
	// returns sentinel.ErrConflict.
	Transition(ctx context.Context, tenantID domain.TenantID, id domain.SubmissionID, from, to models.Status, processedBy string, now time.Time) error
	// SetDocument completes a claimed synthesis: processing -> approved
	// with the generated document URL, same affected-rows discipline.
	SetDocument(ctx context.Context, tenantID domain.TenantID, id domain.SubmissionID, documentURL, processedBy string, now time.Time) error
	// RevertToPending is the compensating action for a failed synthesis.
	RevertToPending(ctx context.Context, tenantID domain.TenantID, id domain.SubmissionID) error

	// ListApprovedFacility returns approved facility submissions for the
	// bookings calendar.
	ListApprovedFacility(ctx context.Context, tenantID domain.TenantID) ([]*models.Submission, error)
}
