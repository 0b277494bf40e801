// Package models defines clearance submissions and their state machine.
package models

import (
	"time"

	"lingkod/pkg/domain"
)

// Type is the closed set of document kinds the office issues.
type Type string

const (
	TypeBarangay         Type = "barangay"
	TypeBusiness         Type = "business"
	TypeBlotter          Type = "blotter"
	TypeFacility         Type = "facility"
	TypeGoodMoral        Type = "good-moral"
	TypeIndigency        Type = "indigency"
	TypeResidency        Type = "residency"
	TypeLuntian          Type = "luntian"
	TypeCSOAccreditation Type = "cso-accreditation"
	TypeBarangayID       Type = "barangay-id"
)

// Types lists every clearance type, in template order.
func Types() []Type {
	return []Type{
		TypeBarangay, TypeBusiness, TypeBlotter, TypeFacility, TypeGoodMoral,
		TypeIndigency, TypeResidency, TypeLuntian, TypeCSOAccreditation,
		TypeBarangayID,
	}
}

func (t Type) Valid() bool {
	switch t {
	case TypeBarangay, TypeBusiness, TypeBlotter, TypeFacility, TypeGoodMoral,
		TypeIndigency, TypeResidency, TypeLuntian, TypeCSOAccreditation,
		TypeBarangayID:
		return true
	}
	return false
}

// SupportsPhoto reports whether this document kind embeds the resident photo.
func (t Type) SupportsPhoto() bool {
	switch t {
	case TypeBarangay, TypeBarangayID, TypeIndigency, TypeGoodMoral, TypeResidency:
		return true
	}
	return false
}

// Status of a submission. Processing marks a claimed, in-flight document
// generation so synthesis runs at most once.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition enumerates the legal status changes. Processing is optional:
// a plain review may approve or reject straight from pending.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusApproved || to == StatusRejected
	case StatusProcessing:
		return to == StatusApproved || to == StatusRejected
	}
	return false
}

// Submission is one request for a clearance document.
type Submission struct {
	ID            domain.SubmissionID `json:"id"`
	TenantID      domain.TenantID     `json:"tenant_id"`
	ClearanceType Type                `json:"clearance_type"`
	Name          string              `json:"name"`
	FormData      map[string]string   `json:"form_data"`
	ResidentID    domain.ResidentID   `json:"resident_id,omitempty"`
	Status        Status              `json:"status"`
	DocumentURL   string              `json:"document_url,omitempty"`
	ProcessedBy   string              `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time          `json:"processed_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Field looks up a form value by key, empty when absent.
func (s *Submission) Field(key string) string {
	return s.FormData[key]
}

// FirstField returns the first non-empty value among the given form keys.
// Several forms accumulated alternate key spellings over time.
func (s *Submission) FirstField(keys ...string) string {
	for _, key := range keys {
		if v := s.FormData[key]; v != "" {
			return v
		}
	}
	return ""
}
