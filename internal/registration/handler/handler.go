// Package handler exposes the registration pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lingkod/internal/registration/models"
	regService "lingkod/internal/registration/service"
	"lingkod/internal/tenant"
	tenantmodels "lingkod/internal/tenant/models"
	"lingkod/pkg/domain"
	dErrors "lingkod/pkg/domain-errors"
	"lingkod/pkg/platform/httputil"
	"lingkod/pkg/requestcontext"
)

const birthdateLayout = "2006-01-02"

// Service is the registration operations the handler orchestrates.
type Service interface {
	Submit(ctx context.Context, tenant *tenantmodels.Config, in regService.SubmitInput) (*models.PendingRegistration, error)
	Approve(ctx context.Context, tenant *tenantmodels.Config, id domain.RegistrationID, processedBy string) (*models.Resident, error)
	Reject(ctx context.Context, tenant *tenantmodels.Config, id domain.RegistrationID, processedBy string) error
	List(ctx context.Context, tenant *tenantmodels.Config, status models.Status, limit int) ([]*models.PendingRegistration, error)
	SearchResidents(ctx context.Context, tenant *tenantmodels.Config, query string) ([]*models.Resident, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the routes reachable without a session.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/api/register", h.handleSubmit)
}

// RegisterAdmin mounts the session-protected routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/api/admin/registrations", h.handleList)
	r.Patch("/api/admin/registrations", h.handlePatch)
	r.Post("/api/admin/approve-registration", h.handleApprove)
	r.Get("/api/residents/search", h.handleSearchResidents)
}

type submitRequest struct {
	FirstName     string `json:"first_name"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name"`
	Suffix        string `json:"suffix"`
	Birthdate     string `json:"birthdate"`
	Gender        string `json:"gender"`
	CivilStatus   string `json:"civil_status"`
	Citizenship   string `json:"citizenship"`
	Purok         string `json:"purok"`
	ContactNumber string `json:"contact_number"`
	Photo         string `json:"photo"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := tenant.MustFromContext(ctx)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var birthdate time.Time
	if req.Birthdate != "" {
		var err error
		birthdate, err = time.Parse(birthdateLayout, req.Birthdate)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "birthdate must be YYYY-MM-DD"))
			return
		}
	}

	reg, err := h.service.Submit(ctx, cfg, regService.SubmitInput{
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		Suffix:        req.Suffix,
		Birthdate:     birthdate,
		Gender:        req.Gender,
		CivilStatus:   req.CivilStatus,
		Citizenship:   req.Citizenship,
		Purok:         req.Purok,
		ContactNumber: req.ContactNumber,
		PhotoDataURI:  req.Photo,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration submit rejected",
			"request_id", requestcontext.RequestID(ctx),
			"tenant", cfg.Slug,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"id":     reg.ID.String(),
		"status": reg.Status,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := tenant.MustFromContext(ctx)

	regs, err := h.service.List(ctx, cfg, models.Status(r.URL.Query().Get("status")), 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"registrations": regs})
}

type patchRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (h *Handler) handlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := tenant.MustFromContext(ctx)

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	id, err := domain.ParseRegistrationID(req.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	admin := requestcontext.AdminUser(ctx)

	switch models.Status(req.Status) {
	case models.StatusApproved:
		resident, err := h.service.Approve(ctx, cfg, id, admin)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":      models.StatusApproved,
			"resident_id": resident.ID.String(),
		})
	case models.StatusRejected:
		if err := h.service.Reject(ctx, cfg, id, admin); err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": models.StatusRejected})
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "status must be approved or rejected"))
	}
}

type approveRequest struct {
	ID string `json:"id"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := tenant.MustFromContext(ctx)

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	id, err := domain.ParseRegistrationID(req.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resident, err := h.service.Approve(ctx, cfg, id, requestcontext.AdminUser(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "registration approval failed",
			"request_id", requestcontext.RequestID(ctx),
			"tenant", cfg.Slug,
			"registration_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"resident": resident})
}

func (h *Handler) handleSearchResidents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := tenant.MustFromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "query parameter q is required"))
		return
	}

	residents, err := h.service.SearchResidents(ctx, cfg, query)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if residents == nil {
		residents = []*models.Resident{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"residents": residents})
}
