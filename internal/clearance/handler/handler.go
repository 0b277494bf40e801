// Package handler exposes the clearance pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lingkod/internal/clearance/models"
	clearanceService "lingkod/internal/clearance/service"
	"lingkod/internal/tenant"
	tenantmodels "lingkod/internal/tenant/models"
	"lingkod/pkg/domain"
	dErrors "lingkod/pkg/domain-errors"
	"lingkod/pkg/platform/httputil"
	"lingkod/pkg/requestcontext"
)

// Service is the clearance operations the handler orchestrates.
type Service interface {
	Submit(ctx context.Context, tenant *tenantmodels.Config, in clearanceService.SubmitInput) (*models.Submission, string, error)
	List(ctx context.Context, tenant *tenantmodels.Config, status models.Status, limit, offset int) ([]*models.Submission, int, error)
	UpdateStatus(ctx context.Context, tenant *tenantmodels.Config, id domain.SubmissionID, to models.Status, processedBy string) error
	GenerateDocument(ctx context.Context, tenant *tenantmodels.Config, id domain.SubmissionID, processedBy string) (*models.Submission, error)
	FacilityBookings(ctx context.Context, tenant *tenantmodels.Config) ([]*models.Submission, error)
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
	r.Post("/api/submit-clearance", h.handleSubmit)
	r.Get("/api/facility-bookings", h.handleFacilityBookings)
}

// RegisterAdmin mounts the session-protected routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/api/admin/submissions", h.handleList)
	r.Patch("/api/admin/submissions", h.handlePatch)
	r.Post("/api/admin/generate-clearance", h.handleGenerate)
}

type submitRequest struct {
	ClearanceType string            `json:"clearance_type"`
	Name          string            `json:"name"`
	FormData      map[string]string `json:"form_data"`
	ResidentID    string            `json:"resident_id"`
	Photo         string            `json:"photo"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := tenant.MustFromContext(ctx)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var residentID domain.ResidentID
	if req.ResidentID != "" {
		var err error
		residentID, err = domain.ParseResidentID(req.ResidentID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	sub, warning, err := h.service.Submit(ctx, cfg, clearanceService.SubmitInput{
		ClearanceType: models.Type(req.ClearanceType),
		Name:          req.Name,
		FormData:      req.FormData,
		ResidentID:    residentID,
		PhotoDataURI:  req.Photo,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "clearance submit rejected",
			"request_id", requestcontext.RequestID(ctx),
			"tenant", cfg.Slug,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	body := map[string]any{
		"id":     sub.ID.String(),
		"status": sub.Status,
	}
	if warning != "" {
		body["warning"] = warning
	}
	httputil.WriteJSON(w, http.StatusCreated, body)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := tenant.MustFromContext(ctx)
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be an integer"))
		return
	}
	offset, err := queryInt(q.Get("offset"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "offset must be an integer"))
		return
	}

	subs, total, err := h.service.List(ctx, cfg, models.Status(q.Get("status")), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if subs == nil {
		subs = []*models.Submission{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"total":       total,
	})
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
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
	id, err := domain.ParseSubmissionID(req.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.UpdateStatus(ctx, cfg, id, models.Status(req.Status), requestcontext.AdminUser(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": req.Status})
}

type generateRequest struct {
	ID string `json:"id"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := tenant.MustFromContext(ctx)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	id, err := domain.ParseSubmissionID(req.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.service.GenerateDocument(ctx, cfg, id, requestcontext.AdminUser(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "document generation failed",
			"request_id", requestcontext.RequestID(ctx),
			"tenant", cfg.Slug,
			"submission_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":       sub.Status,
		"document_url": sub.DocumentURL,
	})
}

func (h *Handler) handleFacilityBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := tenant.MustFromContext(ctx)

	bookings, err := h.service.FacilityBookings(ctx, cfg)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Submission{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}
