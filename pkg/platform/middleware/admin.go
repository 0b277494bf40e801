package middleware

import (
	"log/slog"
	"net/http"

	"lingkod/pkg/requestcontext"
)

// SessionCookie is the admin session cookie name.
const SessionCookie = "admin_session"

// SessionValidator checks an admin session token and returns the admin
// identity it was issued to.
type SessionValidator interface {
	Validate(token string) (string, error)
}

// RequireAdmin rejects requests without a valid admin session cookie.
// The admin identity lands in the request context for processed_by columns.
func RequireAdmin(sessions SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}
			user, err := sessions.Validate(cookie.Value)
			if err != nil {
				logger.Debug("admin session rejected",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithAdminUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
