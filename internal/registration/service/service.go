// Package service orchestrates the registration lifecycle: public
// submission, admin review, and the claim-then-commit approval saga.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lingkod/internal/audit"
	"lingkod/internal/photo"
	"lingkod/internal/platform/metrics"
	"lingkod/internal/registration/models"
	"lingkod/internal/registration/store"
	tenantmodels "lingkod/internal/tenant/models"
	"lingkod/pkg/domain"
	dErrors "lingkod/pkg/domain-errors"
	"lingkod/pkg/platform/sentinel"
	"lingkod/pkg/requestcontext"
)

const (
	defaultListLimit    = 100
	residentSearchLimit = 10
)

// PhotoIngestor validates and stores an inline photo, returning its URL.
type PhotoIngestor interface {
	Ingest(ctx context.Context, dataURI string, identity photo.Identity) (string, error)
}

// Notifier delivers best-effort notifications. Implementations never block
// the caller on delivery failure.
type Notifier interface {
	RegistrationReceived(ctx context.Context, tenant *tenantmodels.Config, reg *models.PendingRegistration)
	RegistrationApproved(ctx context.Context, tenant *tenantmodels.Config, res *models.Resident)
}

// Auditor records domain events. Satisfied by audit.Publisher.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store    store.Store
	photos   PhotoIngestor
	notifier Notifier
	auditor  Auditor
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewService(st store.Store, photos PhotoIngestor, notifier Notifier, auditor Auditor, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		photos:   photos,
		notifier: notifier,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
	}
}

// SubmitInput is a validated-enough registration form payload. The handler
// parses wire formats; the service owns domain validation.
type SubmitInput struct {
	FirstName     string
	MiddleName    string
	LastName      string
	Suffix        string
	Birthdate     time.Time
	Gender        string
	CivilStatus   string
	Citizenship   string
	Purok         string
	ContactNumber string
	PhotoDataURI  string
}

func (in SubmitInput) validate(now time.Time) error {
	switch {
	case in.FirstName == "":
		return dErrors.New(dErrors.CodeValidation, "first name is required")
	case in.LastName == "":
		return dErrors.New(dErrors.CodeValidation, "last name is required")
	case in.Birthdate.IsZero():
		return dErrors.New(dErrors.CodeValidation, "birthdate is required")
	case in.Birthdate.After(now):
		return dErrors.New(dErrors.CodeValidation, "birthdate must be in the past")
	case in.PhotoDataURI == "":
		return dErrors.New(dErrors.CodeValidation, "photo is required")
	}
	return nil
}

// Submit validates the form, stores the photo, and inserts a pending
// registration. A resident already holding the (first, last, birthdate)
// triple makes the submission a conflict before anything is written.
func (s *Service) Submit(ctx context.Context, tenant *tenantmodels.Config, in SubmitInput) (*models.PendingRegistration, error) {
	now := requestcontext.Now(ctx)
	if err := in.validate(now); err != nil {
		return nil, err
	}

	_, err := s.store.FindDuplicateResident(ctx, tenant.ID, in.FirstName, in.LastName, in.Birthdate)
	if err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "a resident with this name and birthdate is already registered")
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "duplicate check failed")
	}

	photoURL, err := s.photos.Ingest(ctx, in.PhotoDataURI, photo.Identity{
		FirstName:  in.FirstName,
		MiddleName: in.MiddleName,
		LastName:   in.LastName,
		Suffix:     in.Suffix,
	})
	if err != nil {
		return nil, err
	}

	reg := &models.PendingRegistration{
		ID:            domain.RegistrationID(uuid.New()),
		TenantID:      tenant.ID,
		FirstName:     in.FirstName,
		MiddleName:    in.MiddleName,
		LastName:      in.LastName,
		Suffix:        in.Suffix,
		Birthdate:     in.Birthdate,
		Age:           models.AgeAt(in.Birthdate, now),
		Gender:        in.Gender,
		CivilStatus:   in.CivilStatus,
		Citizenship:   in.Citizenship,
		Purok:         in.Purok,
		ContactNumber: in.ContactNumber,
		PhotoURL:      photoURL,
		Status:        models.StatusPending,
		CreatedAt:     now,
	}
	if err := s.store.Insert(ctx, reg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not store registration")
	}

	s.metrics.IncRegistrationSubmitted()
	s.emitAudit(ctx, audit.Event{
		TenantID: tenant.ID.String(),
		Actor:    "public",
		Action:   audit.ActionRegistrationSubmitted,
		Entity:   "registration",
		EntityID: reg.ID.String(),
	})
	if s.notifier != nil {
		s.notifier.RegistrationReceived(ctx, tenant, reg)
	}
	return reg, nil
}

// Approve runs the claim-then-commit saga. Exactly one of two concurrent
// approvals succeeds; the loser sees a conflict. A duplicate resident or a
// failed insert reverts the registration to pending while the error still
// reaches the caller.
func (s *Service) Approve(ctx context.Context, tenant *tenantmodels.Config, id domain.RegistrationID, processedBy string) (*models.Resident, error) {
	now := requestcontext.Now(ctx)

	if err := s.store.ClaimApproval(ctx, tenant.ID, id, processedBy, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		case errors.Is(err, sentinel.ErrConflict):
			s.metrics.IncApprovalConflict()
			return nil, dErrors.New(dErrors.CodeConflict, "registration was already processed")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not claim registration")
	}

	reg, err := s.store.GetByID(ctx, tenant.ID, id)
	if err != nil {
		s.revert(ctx, tenant.ID, id)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load claimed registration")
	}

	_, err = s.store.FindDuplicateResident(ctx, tenant.ID, reg.FirstName, reg.LastName, reg.Birthdate)
	if err == nil {
		s.revert(ctx, tenant.ID, id)
		return nil, dErrors.New(dErrors.CodeConflict, "a resident with this name and birthdate already exists")
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		s.revert(ctx, tenant.ID, id)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "duplicate check failed")
	}

	resident := &models.Resident{
		ID:             domain.ResidentID(uuid.New()),
		TenantID:       tenant.ID,
		FirstName:      reg.FirstName,
		MiddleName:     reg.MiddleName,
		LastName:       reg.LastName,
		Suffix:         reg.Suffix,
		Birthdate:      reg.Birthdate,
		Age:            models.AgeAt(reg.Birthdate, now),
		Gender:         reg.Gender,
		CivilStatus:    reg.CivilStatus,
		Citizenship:    reg.Citizenship,
		Purok:          reg.Purok,
		ContactNumber:  reg.ContactNumber,
		PhotoURL:       reg.PhotoURL,
		RegistrationID: reg.ID,
		CreatedAt:      now,
	}
	if err := s.store.InsertResident(ctx, resident); err != nil {
		s.revert(ctx, tenant.ID, id)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create resident")
	}

	s.metrics.IncRegistrationApproved()
	s.emitAudit(ctx, audit.Event{
		TenantID: tenant.ID.String(),
		Actor:    processedBy,
		Action:   audit.ActionRegistrationApproved,
		Entity:   "registration",
		EntityID: id.String(),
		Detail:   map[string]string{"resident_id": resident.ID.String()},
	})
	if s.notifier != nil {
		s.notifier.RegistrationApproved(ctx, tenant, resident)
	}
	return resident, nil
}

// Reject moves a pending registration to rejected.
func (s *Service) Reject(ctx context.Context, tenant *tenantmodels.Config, id domain.RegistrationID, processedBy string) error {
	err := s.store.UpdateStatus(ctx, tenant.ID, id, models.StatusRejected, processedBy, requestcontext.Now(ctx))
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "registration not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "registration was already processed")
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not update registration")
	}

	s.emitAudit(ctx, audit.Event{
		TenantID: tenant.ID.String(),
		Actor:    processedBy,
		Action:   audit.ActionRegistrationRejected,
		Entity:   "registration",
		EntityID: id.String(),
	})
	return nil
}

// List returns registrations for admin review, newest first.
func (s *Service) List(ctx context.Context, tenant *tenantmodels.Config, status models.Status, limit int) ([]*models.PendingRegistration, error) {
	if status != "" && !status.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown status filter")
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	regs, err := s.store.List(ctx, tenant.ID, status, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list registrations")
	}
	return regs, nil
}

// SearchResidents matches all terms of the query against resident names.
func (s *Service) SearchResidents(ctx context.Context, tenant *tenantmodels.Config, query string) ([]*models.Resident, error) {
	residents, err := s.store.SearchResidents(ctx, tenant.ID, query, residentSearchLimit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "resident search failed")
	}
	return residents, nil
}

// GetResident loads one resident by id.
func (s *Service) GetResident(ctx context.Context, tenant *tenantmodels.Config, id domain.ResidentID) (*models.Resident, error) {
	res, err := s.store.GetResident(ctx, tenant.ID, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "resident not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load resident")
	}
	return res, nil
}

// revert is the compensating action for a failed approval. Its own failure
// is logged, never propagated: the triggering error is the one the caller
// needs to see.
func (s *Service) revert(ctx context.Context, tenantID domain.TenantID, id domain.RegistrationID) {
	s.metrics.IncApprovalRollback()
	if err := s.store.RevertToPending(ctx, tenantID, id); err != nil {
		s.logger.Error("compensating revert failed, registration stuck in approved",
			"registration_id", id.String(),
			"error", err,
		)
		return
	}
	s.emitAudit(ctx, audit.Event{
		TenantID: tenantID.String(),
		Action:   audit.ActionRegistrationReverted,
		Entity:   "registration",
		EntityID: id.String(),
	})
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}
