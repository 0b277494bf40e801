// Package resolver maps inbound host names to tenant configurations.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"lingkod/internal/platform/config"
	"lingkod/internal/tenant/cache"
	tenantmetrics "lingkod/internal/tenant/metrics"
	"lingkod/internal/tenant/models"
	"lingkod/internal/tenant/store"
	"lingkod/pkg/platform/sentinel"
)

// Resolver resolves host headers to tenant configs with a TTL cache in
// front of the backing store. Misses within a TTL window fetch at most once
// per key: concurrent resolutions of the same domain share one store fetch.
type Resolver struct {
	store        store.Store
	cache        cache.Cache
	ttl          time.Duration
	slugOverride string
	devFallback  bool
	logger       *slog.Logger
	metrics      *tenantmetrics.Metrics
	group        singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTTL overrides the cache TTL (default config.TenantCacheTTL).
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.ttl = ttl }
}

// WithSlugOverride pins resolution to one tenant slug, ignoring the host.
// Used when a single-tenant deployment fronts the shared codebase.
func WithSlugOverride(slug string) Option {
	return func(r *Resolver) { r.slugOverride = slug }
}

// WithDevFallback lets localhost requests resolve to an arbitrary active
// tenant. Development convenience only.
func WithDevFallback(enabled bool) Option {
	return func(r *Resolver) { r.devFallback = enabled }
}

// WithMetrics attaches resolver metrics.
func WithMetrics(m *tenantmetrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New builds a Resolver.
func New(st store.Store, c cache.Cache, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		store:  st,
		cache:  c,
		ttl:    config.TenantCacheTTL,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CleanHost strips a leading www., the port, and any character outside
// [A-Za-z0-9.-] from a host header.
func CleanHost(host string) string {
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	var b strings.Builder
	b.Grow(len(host))
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isLoopback(host string) bool {
	return host == "localhost" || strings.HasPrefix(host, "127.")
}

// Resolve maps a host header to the owning tenant's config.
// Returns sentinel.ErrNotFound when no active tenant matches; callers must
// answer that with a not-found response, never a crash.
func (r *Resolver) Resolve(ctx context.Context, hostHeader string) (*models.Config, error) {
	if r.slugOverride != "" {
		return r.resolveKey(ctx, r.slugOverride, func(ctx context.Context) (*models.Config, error) {
			return r.store.FindBySlug(ctx, r.slugOverride)
		})
	}

	domain := CleanHost(hostHeader)
	if domain == "" {
		r.countUnknown()
		return nil, sentinel.ErrNotFound
	}

	return r.resolveKey(ctx, domain, func(ctx context.Context) (*models.Config, error) {
		cfg, err := r.store.FindByDomain(ctx, domain)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		if r.devFallback && isLoopback(domain) {
			cfg, ferr := r.store.FindAnyActive(ctx)
			if ferr != nil {
				return nil, ferr
			}
			if r.metrics != nil {
				r.metrics.DevFallbacks.Inc()
			}
			r.logger.Warn("serving development tenant fallback",
				"host", domain,
				"tenant", cfg.Slug,
			)
			return cfg, nil
		}
		return nil, err
	})
}

func (r *Resolver) resolveKey(ctx context.Context, key string, fetch func(context.Context) (*models.Config, error)) (*models.Config, error) {
	if cfg, ok := r.cache.Get(ctx, key); ok {
		if r.metrics != nil {
			r.metrics.CacheHits.Inc()
		}
		return cfg, nil
	}
	if r.metrics != nil {
		r.metrics.CacheMisses.Inc()
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		if cfg, ok := r.cache.Get(ctx, key); ok {
			return cfg, nil
		}
		if r.metrics != nil {
			r.metrics.StoreFetches.Inc()
		}
		cfg, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.Set(ctx, key, cfg, r.ttl)
		return cfg, nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			r.countUnknown()
		}
		return nil, err
	}
	return v.(*models.Config), nil
}

func (r *Resolver) countUnknown() {
	if r.metrics != nil {
		r.metrics.Unknown.Inc()
	}
}

// Invalidate clears one cached domain, or the whole cache when domain is
// empty. Called after out-of-band tenant-config mutation.
func (r *Resolver) Invalidate(ctx context.Context, domain string) {
	if domain == "" {
		r.cache.InvalidateAll(ctx)
		return
	}
	r.cache.Invalidate(ctx, CleanHost(domain))
}
