// Package models defines the registration pipeline's entities.
package models

import (
	"strings"
	"time"

	"lingkod/pkg/domain"
)

// Status of a pending registration. Registrations are never deleted, only
// status-transitioned.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a status change is allowed. Approved and
// rejected are terminal; the compensating revert back to pending is handled
// by the store's RevertToPending, not by this whitelist.
func CanTransition(from, to Status) bool {
	return from == StatusPending && (to == StatusApproved || to == StatusRejected)
}

// PendingRegistration is a proposed resident record awaiting admin review.
type PendingRegistration struct {
	ID            domain.RegistrationID `json:"id"`
	TenantID      domain.TenantID       `json:"tenant_id"`
	FirstName     string                `json:"first_name"`
	MiddleName    string                `json:"middle_name,omitempty"`
	LastName      string                `json:"last_name"`
	Suffix        string                `json:"suffix,omitempty"`
	Birthdate     time.Time             `json:"birthdate"`
	Age           int                   `json:"age"`
	Gender        string                `json:"gender,omitempty"`
	CivilStatus   string                `json:"civil_status,omitempty"`
	Citizenship   string                `json:"citizenship,omitempty"`
	Purok         string                `json:"purok,omitempty"`
	ContactNumber string                `json:"contact_number,omitempty"`
	PhotoURL      string                `json:"photo_url"`
	Status        Status                `json:"status"`
	ProcessedBy   string                `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time            `json:"processed_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// FullName joins the name parts for display and notifications.
func (p *PendingRegistration) FullName() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.FirstName, p.MiddleName, p.LastName, p.Suffix} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Resident is the durable record created when a registration is approved.
// Within a tenant, no two residents may share the case-insensitive
// (first name, last name, birthdate) triple.
type Resident struct {
	ID             domain.ResidentID     `json:"id"`
	TenantID       domain.TenantID       `json:"tenant_id"`
	FirstName      string                `json:"first_name"`
	MiddleName     string                `json:"middle_name,omitempty"`
	LastName       string                `json:"last_name"`
	Suffix         string                `json:"suffix,omitempty"`
	Birthdate      time.Time             `json:"birthdate"`
	Age            int                   `json:"age"`
	Gender         string                `json:"gender,omitempty"`
	CivilStatus    string                `json:"civil_status,omitempty"`
	Citizenship    string                `json:"citizenship,omitempty"`
	Purok          string                `json:"purok,omitempty"`
	ContactNumber  string                `json:"contact_number,omitempty"`
	PhotoURL       string                `json:"photo_url,omitempty"`
	RegistrationID domain.RegistrationID `json:"registration_id,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// FullName joins the resident's name parts for display.
func (r *Resident) FullName() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{r.FirstName, r.MiddleName, r.LastName, r.Suffix} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// AgeAt derives a whole-year age from a birthdate, clamped at zero.
func AgeAt(birthdate, now time.Time) int {
	age := now.Year() - birthdate.Year()
	if now.Month() < birthdate.Month() ||
		(now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}
