// Package cache holds resolved tenant configs behind a small get/set/
// invalidate interface so the resolver can run against process memory, Redis,
// or a fake with an injected clock.
package cache

import (
	"context"
	"time"

	"lingkod/internal/tenant/models"
)

// Cache stores resolved tenant configs keyed by cleaned domain (or override
// slug). Entries expire after their TTL; Invalidate removes one entry,
// InvalidateAll clears everything. Implementations must be safe for
// concurrent use; last-writer-wins on racing refreshes is acceptable because
// entries are independently fetched and TTL-bounded.
type Cache interface {
	Get(ctx context.Context, key string) (*models.Config, bool)
	Set(ctx context.Context, key string, cfg *models.Config, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
	InvalidateAll(ctx context.Context)
}
