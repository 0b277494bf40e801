// Package httptransport assembles the HTTP surface: the shared middleware
// chain, tenant resolution, and the public and session-protected route
// groups. Handlers stay with their features; this package only wires them.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lingkod/internal/admin"
	clearancehandler "lingkod/internal/clearance/handler"
	registrationhandler "lingkod/internal/registration/handler"
	"lingkod/internal/tenant"
	"lingkod/internal/tenant/resolver"
	"lingkod/pkg/platform/httputil"
	"lingkod/pkg/platform/middleware"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger       *slog.Logger
	Resolver     *resolver.Resolver
	Sessions     middleware.SessionValidator
	Admin        *admin.Handler
	Registration *registrationhandler.Handler
	Clearance    *clearancehandler.Handler
}

// NewRouter builds the full route tree. Health and metrics endpoints sit
// outside tenant resolution so probes work without a tenant host.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(d.Resolver, d.Logger))

		d.Admin.Register(r)
		d.Registration.RegisterPublic(r)
		d.Clearance.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(d.Sessions, d.Logger))
			d.Registration.RegisterAdmin(r)
			d.Clearance.RegisterAdmin(r)
		})
	})
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
