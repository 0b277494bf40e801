package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	TenantID  string            `json:"tenant_id"`
	Actor     string            `json:"actor"`
	Action    string            `json:"action"`
	Entity    string            `json:"entity"`
	EntityID  string            `json:"entity_id"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// Actions recorded by the request pipeline.
const (
	ActionRegistrationSubmitted = "registration.submitted"
	ActionRegistrationApproved  = "registration.approved"
	ActionRegistrationRejected  = "registration.rejected"
	ActionRegistrationReverted  = "registration.reverted"
	ActionSubmissionReceived    = "submission.received"
	ActionSubmissionUpdated     = "submission.updated"
	ActionDocumentGenerated     = "document.generated"
	ActionAdminLogin            = "admin.login"
	ActionAdminLoginFailed      = "admin.login_failed"
)
