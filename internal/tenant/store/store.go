// Package store persists tenant configuration records.
package store

import (
	"context"

	"lingkod/internal/tenant/models"
)

// Store reads tenant configs. All lookups are restricted to active tenants;
// deactivation must take effect on the next uncached resolution.
type Store interface {
	// FindByDomain returns the active tenant with the exact cleaned domain.
	FindByDomain(ctx context.Context, domain string) (*models.Config, error)
	// FindBySlug returns the active tenant with the given slug.
	FindBySlug(ctx context.Context, slug string) (*models.Config, error)
	// FindAnyActive returns an arbitrary active tenant, used only by the
	// localhost development fallback.
	FindAnyActive(ctx context.Context) (*models.Config, error)
}
