// Package metrics provides observability for document synthesis.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DocumentsGenerated *prometheus.CounterVec
	RateLimitRetries   prometheus.Counter
	SynthesisFailures  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		DocumentsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingkod_documents_generated_total",
			Help: "Documents synthesized, by clearance type.",
		}, []string{"clearance_type"}),
		RateLimitRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingkod_docgen_rate_limit_retries_total",
			Help: "Template copies retried after upstream rate limiting.",
		}),
		SynthesisFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingkod_docgen_failures_total",
			Help: "Synthesis failures by error code.",
		}, []string{"code"}),
	}
}

// IncGenerated records a synthesized document.
func (m *Metrics) IncGenerated(clearanceType string) {
	if m != nil {
		m.DocumentsGenerated.WithLabelValues(clearanceType).Inc()
	}
}

// IncRetry records a rate-limit retry.
func (m *Metrics) IncRetry() {
	if m != nil {
		m.RateLimitRetries.Inc()
	}
}

// IncFailure records a synthesis failure by code.
func (m *Metrics) IncFailure(code string) {
	if m != nil {
		m.SynthesisFailures.WithLabelValues(code).Inc()
	}
}
