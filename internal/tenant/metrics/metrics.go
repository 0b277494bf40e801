package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics observes tenant resolution.
type Metrics struct {
	CacheHits    prometheus.Counter
	CacheMisses  prometheus.Counter
	StoreFetches prometheus.Counter
	DevFallbacks prometheus.Counter
	Unknown      prometheus.Counter
}

// New creates and registers tenant resolver metrics.
func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingkod_tenant_cache_hits_total",
			Help: "Tenant resolutions served from cache.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingkod_tenant_cache_misses_total",
			Help: "Tenant resolutions that missed the cache.",
		}),
		StoreFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingkod_tenant_store_fetches_total",
			Help: "Tenant config fetches against the backing store.",
		}),
		DevFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingkod_tenant_dev_fallbacks_total",
			Help: "Localhost resolutions served by the development fallback.",
		}),
		Unknown: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingkod_tenant_unknown_total",
			Help: "Requests whose host matched no active tenant.",
		}),
	}
}
