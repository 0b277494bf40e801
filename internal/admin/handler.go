package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"lingkod/internal/audit"
	"lingkod/internal/tenant"
	dErrors "lingkod/pkg/domain-errors"
	"lingkod/pkg/platform/httputil"
	"lingkod/pkg/platform/middleware"
	"lingkod/pkg/requestcontext"
)

// defaultUsername stands in when the login form carries no username; the
// value lands in processed_by columns and audit events.
const defaultUsername = "admin"

// Auditor records login events. Satisfied by audit.Publisher.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Handler struct {
	sessions *SessionManager
	lockout  *Lockout
	// fallbackHash verifies logins for tenants without their own
	// admin_password_hash.
	fallbackHash string
	secureCookie bool
	auditor      Auditor
	logger       *slog.Logger
}

// HandlerOption configures the handler.
type HandlerOption func(*Handler)

// WithSecureCookie marks the session cookie Secure, for TLS deployments.
func WithSecureCookie(secure bool) HandlerOption {
	return func(h *Handler) { h.secureCookie = secure }
}

// WithAuditor attaches login event auditing.
func WithAuditor(a Auditor) HandlerOption {
	return func(h *Handler) { h.auditor = a }
}

func NewHandler(sessions *SessionManager, lockout *Lockout, fallbackHash string, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		sessions:     sessions,
		lockout:      lockout,
		fallbackHash: fallbackHash,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the login routes. These stay outside the session-protected
// group; the session check endpoint does its own cookie validation.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/admin/login", h.handleLogin)
	r.Get("/api/admin/login", h.handleSessionCheck)
	r.Post("/api/admin/logout", h.handleLogout)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := tenant.MustFromContext(ctx)

	ip := requestcontext.ClientIP(ctx)
	if ip == "" {
		ip = "unknown"
	}
	if !h.lockout.Allow(ip) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
			"too many login attempts, try again in 1 minute"))
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "password is required"))
		return
	}
	username := req.Username
	if username == "" {
		username = defaultUsername
	}

	hash := cfg.AdminPasswordHash
	if hash == "" {
		hash = h.fallbackHash
	}
	if hash == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		h.emitAudit(ctx, audit.Event{
			TenantID: cfg.ID.String(),
			Actor:    username,
			Action:   audit.ActionAdminLoginFailed,
			Entity:   "session",
			Detail:   map[string]string{"ip": ip},
		})
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid password"))
		return
	}

	token, err := h.sessions.Issue(username, requestcontext.Now(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.emitAudit(ctx, audit.Event{
		TenantID: cfg.ID.String(),
		Actor:    username,
		Action:   audit.ActionAdminLogin,
		Entity:   "session",
		Detail:   map[string]string{"ip": ip},
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleSessionCheck(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookie)
	if err == nil && cookie.Value != "" {
		if _, err := h.sessions.Validate(cookie.Value); err == nil {
			httputil.WriteJSON(w, http.StatusOK, map[string]any{"authenticated": true})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) emitAudit(ctx context.Context, event audit.Event) {
	if h.auditor == nil {
		return
	}
	if err := h.auditor.Emit(ctx, event); err != nil {
		h.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}
