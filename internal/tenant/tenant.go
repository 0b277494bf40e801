// Package tenant carries the resolved tenant through the request lifecycle.
package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"lingkod/internal/tenant/models"
	"lingkod/internal/tenant/resolver"
	dErrors "lingkod/pkg/domain-errors"
	"lingkod/pkg/platform/httputil"
	"lingkod/pkg/platform/sentinel"
)

type contextKey struct{}

// NewContext returns a context carrying the tenant config.
func NewContext(ctx context.Context, cfg *models.Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext extracts the tenant config resolved earlier in the request.
func FromContext(ctx context.Context) (*models.Config, bool) {
	cfg, ok := ctx.Value(contextKey{}).(*models.Config)
	return cfg, ok
}

// MustFromContext extracts the tenant config and panics when absent. Only for
// handlers mounted behind Middleware, where absence is a programming error.
func MustFromContext(ctx context.Context) *models.Config {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("tenant: config missing from context")
	}
	return cfg
}

// Middleware resolves the Host header to a tenant config and stores it on the
// request context. Unknown hosts get a 404; resolver failures get a 500.
func Middleware(res *resolver.Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg, err := res.Resolve(r.Context(), r.Host)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no tenant is configured for this domain"))
					return
				}
				logger.Error("tenant resolution failed", "host", r.Host, "error", err)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "tenant resolution failed"))
				return
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), cfg)))
		})
	}
}
