// Package store persists pending registrations and residents.
package store

import (
	"context"
	"time"

	"lingkod/internal/registration/models"
	"lingkod/pkg/domain"
)

// Store is the registration feature's persistence port. All reads and writes
// are tenant-scoped; an id from another tenant behaves like a missing row.
type Store interface {
	Insert(ctx context.Context, reg *models.PendingRegistration) error
	GetByID(ctx context.Context, tenantID domain.TenantID, id domain.RegistrationID) (*models.PendingRegistration, error)
	// List returns registrations newest first, optionally filtered by status.
	List(ctx context.Context, tenantID domain.TenantID, status models.Status, limit int) ([]*models.PendingRegistration, error)

	// ClaimApproval performs the conditional transition pending -> approved,
	// stamping processed_by/processed_at. It must affect exactly one row;
	// zero affected rows means another admin got there first and the store
	// returns sentinel.ErrConflict.
	ClaimApproval(ctx context.Context, tenantID domain.TenantID, id domain.RegistrationID, processedBy string, now time.Time) error
	// RevertToPending is the compensating action for a failed approval: it
	// puts the registration back to pending and clears the processing fields.
	RevertToPending(ctx context.Context, tenantID domain.TenantID, id domain.RegistrationID) error
	// UpdateStatus applies an already-whitelisted transition from pending,
	// with the same affected-rows discipline as ClaimApproval.
	UpdateStatus(ctx context.Context, tenantID domain.TenantID, id domain.RegistrationID, status models.Status, processedBy string, now time.Time) error

	// FindDuplicateResident matches the case-insensitive (first, last,
	// birthdate) triple; sentinel.ErrNotFound when no resident matches.
	FindDuplicateResident(ctx context.Context, tenantID domain.TenantID, firstName, lastName string, birthdate time.Time) (*models.Resident, error)
	InsertResident(ctx context.Context, res *models.Resident) error
	GetResident(ctx context.Context, tenantID domain.TenantID, id domain.ResidentID) (*models.Resident, error)
	UpdateResidentPhoto(ctx context.Context, tenantID domain.TenantID, id domain.ResidentID, photoURL string) error
	// SearchResidents matches every whitespace-separated term of query as a
	// substring of any name part, newest first, capped at limit.
	SearchResidents(ctx context.Context, tenantID domain.TenantID, query string, limit int) ([]*models.Resident, error)
}
