// Package notify sends SMS notifications for pipeline events. Delivery is
// best-effort everywhere: a failed or unconfigured send is logged and
// counted, never surfaced to the triggering request.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	clearancemodels "lingkod/internal/clearance/models"
	"lingkod/internal/platform/metrics"
	regmodels "lingkod/internal/registration/models"
	tenantmodels "lingkod/internal/tenant/models"
)

// Sender delivers one SMS message.
type Sender interface {
	Send(ctx context.Context, to, message string) error
}

// Dispatcher composes and routes event notifications. Office-facing events
// go to the configured admin number, resident-facing events to the contact
// number on the record.
type Dispatcher struct {
	sender      Sender
	adminNumber string
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewDispatcher(sender Sender, adminNumber string, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		adminNumber: adminNumber,
		metrics:     m,
		logger:      logger,
	}
}

// RegistrationReceived tells the office a new registration is waiting.
func (d *Dispatcher) RegistrationReceived(ctx context.Context, tenant *tenantmodels.Config, reg *regmodels.PendingRegistration) {
	msg := fmt.Sprintf("%s: new resident registration from %s is awaiting review.",
		tenant.Name, reg.FullName())
	d.send(ctx, d.adminNumber, msg)
}

// RegistrationApproved tells the resident their registration went through.
func (d *Dispatcher) RegistrationApproved(ctx context.Context, tenant *tenantmodels.Config, res *regmodels.Resident) {
	msg := fmt.Sprintf("Hi %s, your resident registration with %s has been approved.",
		res.FirstName, tenant.Name)
	d.send(ctx, res.ContactNumber, msg)
}

// NewSubmission tells the office a clearance request came in.
func (d *Dispatcher) NewSubmission(ctx context.Context, tenant *tenantmodels.Config, sub *clearancemodels.Submission) {
	msg := fmt.Sprintf("%s: new %s clearance request from %s.",
		tenant.Name, sub.ClearanceType, sub.Name)
	if purpose := sub.Field("purpose"); purpose != "" {
		msg += " Purpose: " + purpose + "."
	}
	d.send(ctx, d.adminNumber, msg)
}

// DocumentGenerated tells the requester their document is ready.
func (d *Dispatcher) DocumentGenerated(ctx context.Context, tenant *tenantmodels.Config, sub *clearancemodels.Submission, contact string) {
	msg := fmt.Sprintf("Hi %s, your %s clearance from %s is ready for pickup at the barangay hall.",
		sub.Name, sub.ClearanceType, tenant.Name)
	d.send(ctx, contact, msg)
}

func (d *Dispatcher) send(ctx context.Context, to, message string) {
	if to == "" {
		d.metrics.IncSMSSent("skipped")
		d.logger.Debug("sms skipped, no destination number")
		return
	}
	if err := d.sender.Send(ctx, NormalizeNumber(to), message); err != nil {
		d.metrics.IncSMSSent("failed")
		d.logger.Warn("sms delivery failed", "error", err)
		return
	}
	d.metrics.IncSMSSent("sent")
}

// NormalizeNumber rewrites local 09xx mobile numbers into the +639xx
// international form the gateway expects. Anything else passes through.
func NormalizeNumber(n string) string {
	n = strings.TrimSpace(n)
	if strings.HasPrefix(n, "09") && len(n) == 11 {
		return "+63" + n[1:]
	}
	return n
}
