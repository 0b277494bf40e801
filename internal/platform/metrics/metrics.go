package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-level Prometheus metrics. Feature packages
// register their own (see internal/tenant/metrics, internal/docgen/metrics).
type Metrics struct {
	RegistrationsSubmitted prometheus.Counter
	RegistrationsApproved  prometheus.Counter
	ApprovalConflicts      prometheus.Counter
	ApprovalRollbacks      prometheus.Counter
	SubmissionsReceived    *prometheus.CounterVec
	SMSSent                *prometheus.CounterVec
}

// New creates and registers all application-level metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingkod_registrations_submitted_total",
			Help: "Resident registrations received from the public form.",
		}),
		RegistrationsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingkod_registrations_approved_total",
			Help: "Registrations approved and promoted to residents.",
		}),
		ApprovalConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingkod_approval_conflicts_total",
			Help: "Approval claims lost to a concurrent admin.",
		}),
		ApprovalRollbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lingkod_approval_rollbacks_total",
			Help: "Approvals reverted to pending by the compensating action.",
		}),
		SubmissionsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingkod_clearance_submissions_total",
			Help: "Clearance submissions received, by clearance type.",
		}, []string{"clearance_type"}),
		SMSSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lingkod_sms_notifications_total",
			Help: "SMS notification attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// IncRegistrationSubmitted records a public registration submission.
func (m *Metrics) IncRegistrationSubmitted() {
	if m != nil {
		m.RegistrationsSubmitted.Inc()
	}
}

// IncRegistrationApproved records a successful approval saga.
func (m *Metrics) IncRegistrationApproved() {
	if m != nil {
		m.RegistrationsApproved.Inc()
	}
}

// IncApprovalConflict records a claim lost to a concurrent admin.
func (m *Metrics) IncApprovalConflict() {
	if m != nil {
		m.ApprovalConflicts.Inc()
	}
}

// IncApprovalRollback records a compensating revert to pending.
func (m *Metrics) IncApprovalRollback() {
	if m != nil {
		m.ApprovalRollbacks.Inc()
	}
}

// IncSubmissionReceived records a clearance submission by type.
func (m *Metrics) IncSubmissionReceived(clearanceType string) {
	if m != nil {
		m.SubmissionsReceived.WithLabelValues(clearanceType).Inc()
	}
}

// IncSMSSent records an SMS notification attempt by outcome.
func (m *Metrics) IncSMSSent(outcome string) {
	if m != nil {
		m.SMSSent.WithLabelValues(outcome).Inc()
	}
}
