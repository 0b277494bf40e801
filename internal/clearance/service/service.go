// Package service orchestrates clearance submissions: public intake, admin
// review, document generation, and the facility bookings view.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"lingkod/internal/audit"
	"lingkod/internal/clearance/models"
	"lingkod/internal/clearance/store"
	"lingkod/internal/docgen"
	"lingkod/internal/photo"
	"lingkod/internal/platform/metrics"
	regmodels "lingkod/internal/registration/models"
	tenantmodels "lingkod/internal/tenant/models"
	"lingkod/pkg/domain"
	dErrors "lingkod/pkg/domain-errors"
	"lingkod/pkg/platform/sentinel"
	"lingkod/pkg/requestcontext"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Residents is the slice of the registration store this feature needs:
// resolving a linked resident and attaching a captured photo to their record.
type Residents interface {
	GetResident(ctx context.Context, tenantID domain.TenantID, id domain.ResidentID) (*regmodels.Resident, error)
	UpdateResidentPhoto(ctx context.Context, tenantID domain.TenantID, id domain.ResidentID, photoURL string) error
}

// PhotoIngestor stores an inline photo in the tenant's bucket.
type PhotoIngestor interface {
	IngestTo(ctx context.Context, bucket, dataURI string, identity photo.Identity) (string, error)
}

// Synthesizer produces the clearance document. Satisfied by *docgen.Service.
type Synthesizer interface {
	Synthesize(ctx context.Context, sub *models.Submission, resident *regmodels.Resident, tenant *tenantmodels.Config) (docgen.Result, error)
}

// Notifier delivers best-effort notifications. Implementations never block
// the caller on delivery failure.
type Notifier interface {
	NewSubmission(ctx context.Context, tenant *tenantmodels.Config, sub *models.Submission)
	DocumentGenerated(ctx context.Context, tenant *tenantmodels.Config, sub *models.Submission, contact string)
}

// Auditor records domain events. Satisfied by audit.Publisher.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store       store.Store
	residents   Residents
	photos      PhotoIngestor
	synthesizer Synthesizer
	notifier    Notifier
	auditor     Auditor
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewService(
	st store.Store,
	residents Residents,
	photos PhotoIngestor,
	synthesizer Synthesizer,
	notifier Notifier,
	auditor Auditor,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:       st,
		residents:   residents,
		photos:      photos,
		synthesizer: synthesizer,
		notifier:    notifier,
		auditor:     auditor,
		metrics:     m,
		logger:      logger,
	}
}

// SubmitInput is a parsed clearance request form.
type SubmitInput struct {
	ClearanceType models.Type
	Name          string
	FormData      map[string]string
	ResidentID    domain.ResidentID
	PhotoDataURI  string
}

func (in SubmitInput) validate() error {
	switch {
	case !in.ClearanceType.Valid():
		return dErrors.Newf(dErrors.CodeValidation, "unknown clearance type %q", in.ClearanceType)
	case in.Name == "":
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// Submit stores a pending submission. A captured photo is attached to the
// linked resident's record first; if that fails the submission still goes
// through and the failure comes back as a warning.
func (s *Service) Submit(ctx context.Context, tenant *tenantmodels.Config, in SubmitInput) (*models.Submission, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	warning := ""
	if in.PhotoDataURI != "" {
		warning = s.attachPhoto(ctx, tenant, in)
	}

	sub := &models.Submission{
		ID:            domain.SubmissionID(uuid.New()),
		TenantID:      tenant.ID,
		ClearanceType: in.ClearanceType,
		Name:          in.Name,
		FormData:      in.FormData,
		ResidentID:    in.ResidentID,
		Status:        models.StatusPending,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if sub.FormData == nil {
		sub.FormData = map[string]string{}
	}
	if err := s.store.Insert(ctx, sub); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "could not store submission")
	}

	s.metrics.IncSubmissionReceived(string(sub.ClearanceType))
	s.emitAudit(ctx, audit.Event{
		TenantID: tenant.ID.String(),
		Actor:    "public",
		Action:   audit.ActionSubmissionReceived,
		Entity:   "submission",
		EntityID: sub.ID.String(),
		Detail:   map[string]string{"clearance_type": string(sub.ClearanceType)},
	})
	if s.notifier != nil {
		s.notifier.NewSubmission(ctx, tenant, sub)
	}
	return sub, warning, nil
}

// attachPhoto uploads the captured photo to the tenant's bucket and records
// it on the resident. Every failure path returns a warning instead of
// blocking the submission.
func (s *Service) attachPhoto(ctx context.Context, tenant *tenantmodels.Config, in SubmitInput) string {
	if in.ResidentID.IsNil() {
		return "photo ignored: submission is not linked to a resident"
	}

	resident, err := s.residents.GetResident(ctx, tenant.ID, in.ResidentID)
	if err != nil {
		s.logger.Warn("resident lookup for photo failed",
			"resident_id", in.ResidentID,
			"error", err,
		)
		return "photo not saved: linked resident could not be loaded"
	}

	photoURL, err := s.photos.IngestTo(ctx, tenant.Slug, in.PhotoDataURI, photo.Identity{
		FirstName:  resident.FirstName,
		MiddleName: resident.MiddleName,
		LastName:   resident.LastName,
		Suffix:     resident.Suffix,
	})
	if err != nil {
		s.logger.Warn("photo upload failed",
			"resident_id", in.ResidentID,
			"error", err,
		)
		return "photo not saved: upload failed"
	}

	if err := s.residents.UpdateResidentPhoto(ctx, tenant.ID, in.ResidentID, photoURL); err != nil {
		s.logger.Warn("resident photo update failed",
			"resident_id", in.ResidentID,
			"error", err,
		)
		return "photo uploaded but not recorded on the resident"
	}
	return ""
}

// List pages submissions newest first. The limit defaults to 50 and is
// clamped to [1, 200]; negative offsets read from the start.
func (s *Service) List(ctx context.Context, tenant *tenantmodels.Config, status models.Status, limit, offset int) ([]*models.Submission, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, dErrors.Newf(dErrors.CodeValidation, "unknown status filter %q", status)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	subs, total, err := s.store.List(ctx, tenant.ID, status, limit, offset)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "could not list submissions")
	}
	return subs, total, nil
}

func (s *Service) GetByID(ctx context.Context, tenant *tenantmodels.Config, id domain.SubmissionID) (*models.Submission, error) {
	sub, err := s.store.GetByID(ctx, tenant.ID, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load submission")
	}
	return sub, nil
}

// UpdateStatus applies a whitelisted status change. Terminal submissions and
// concurrent updates both surface as conflicts.
func (s *Service) UpdateStatus(ctx context.Context, tenant *tenantmodels.Config, id domain.SubmissionID, to models.Status, processedBy string) error {
	if !to.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown status %q", to)
	}

	sub, err := s.GetByID(ctx, tenant, id)
	if err != nil {
		return err
	}
	if !models.CanTransition(sub.Status, to) {
		return dErrors.Newf(dErrors.CodeConflict, "cannot move a %s submission to %s", sub.Status, to)
	}

	now := requestcontext.Now(ctx)
	if err := s.store.Transition(ctx, tenant.ID, id, sub.Status, to, processedBy, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "submission not found")
		case errors.Is(err, sentinel.ErrConflict):
			return dErrors.New(dErrors.CodeConflict, "submission was updated concurrently")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not update submission")
	}

	s.emitAudit(ctx, audit.Event{
		TenantID: tenant.ID.String(),
		Actor:    processedBy,
		Action:   audit.ActionSubmissionUpdated,
		Entity:   "submission",
		EntityID: id.String(),
		Detail:   map[string]string{"status": string(to)},
	})
	return nil
}

// GenerateDocument claims the submission for processing and synthesizes its
// document. The pending -> processing claim makes generation at-most-once:
// a concurrent attempt loses the conditional update and sees a conflict.
// A failed synthesis reverts the claim so the submission can be retried.
func (s *Service) GenerateDocument(ctx context.Context, tenant *tenantmodels.Config, id domain.SubmissionID, processedBy string) (*models.Submission, error) {
	now := requestcontext.Now(ctx)

	err := s.store.Transition(ctx, tenant.ID, id, models.StatusPending, models.StatusProcessing, processedBy, now)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "submission is already being processed")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not claim submission")
	}

	sub, err := s.store.GetByID(ctx, tenant.ID, id)
	if err != nil {
		s.revert(ctx, tenant.ID, id)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load claimed submission")
	}

	var resident *regmodels.Resident
	if !sub.ResidentID.IsNil() {
		resident, err = s.residents.GetResident(ctx, tenant.ID, sub.ResidentID)
		if err != nil {
			// the form data carries enough to fill the template
			s.logger.Warn("linked resident could not be loaded, generating from form data",
				"submission_id", id,
				"resident_id", sub.ResidentID,
				"error", err,
			)
			resident = nil
		}
	}

	result, err := s.synthesizer.Synthesize(ctx, sub, resident, tenant)
	if err != nil {
		s.revert(ctx, tenant.ID, id)
		return nil, err
	}

	if err := s.store.SetDocument(ctx, tenant.ID, id, result.DocumentURL, processedBy, now); err != nil {
		s.revert(ctx, tenant.ID, id)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not record generated document")
	}

	s.emitAudit(ctx, audit.Event{
		TenantID: tenant.ID.String(),
		Actor:    processedBy,
		Action:   audit.ActionDocumentGenerated,
		Entity:   "submission",
		EntityID: id.String(),
		Detail: map[string]string{
			"clearance_type": string(sub.ClearanceType),
			"document_url":   result.DocumentURL,
		},
	})

	sub.Status = models.StatusApproved
	sub.DocumentURL = result.DocumentURL
	sub.ProcessedBy = processedBy
	sub.ProcessedAt = &now

	if s.notifier != nil {
		contact := sub.FirstField("contact", "contactNumber", "contact_no")
		s.notifier.DocumentGenerated(ctx, tenant, sub, contact)
	}
	return sub, nil
}

func (s *Service) revert(ctx context.Context, tenantID domain.TenantID, id domain.SubmissionID) {
	if err := s.store.RevertToPending(ctx, tenantID, id); err != nil {
		s.logger.Error("could not revert submission to pending",
			"submission_id", id,
			"error", err,
		)
	}
}

// FacilityBookings lists approved basketball court reservations whose event
// date has not passed, soonest first. Dates compare lexically in the
// YYYY-MM-DD form the booking form uses.
func (s *Service) FacilityBookings(ctx context.Context, tenant *tenantmodels.Config) ([]*models.Submission, error) {
	subs, err := s.store.ListApprovedFacility(ctx, tenant.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list facility submissions")
	}

	today := requestcontext.Now(ctx).Format("2006-01-02")
	bookings := make([]*models.Submission, 0, len(subs))
	for _, sub := range subs {
		facility := sub.FirstField("facility", "facilityName", "facility_name")
		if !strings.Contains(strings.ToLower(facility), "basketball court") {
			continue
		}
		if eventDate(sub) < today {
			continue
		}
		bookings = append(bookings, sub)
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		return eventDate(bookings[i]) < eventDate(bookings[j])
	})
	return bookings, nil
}

func eventDate(sub *models.Submission) string {
	return sub.FirstField("eventDate", "event_date", "date")
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}
