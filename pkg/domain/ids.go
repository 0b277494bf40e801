// Package domain holds typed identifiers shared across features.
//
// IDs are distinct uuid-backed types so a TenantID can never be passed where
// a SubmissionID is expected. Parse helpers enforce the invariant that IDs
// crossing a trust boundary are valid, non-nil UUIDs.
package domain

import (
	"database/sql/driver"

	"github.com/google/uuid"

	dErrors "lingkod/pkg/domain-errors"
)

type (
	// TenantID identifies one barangay's configuration and data partition.
	TenantID uuid.UUID
	// RegistrationID identifies a pending resident registration.
	RegistrationID uuid.UUID
	// ResidentID identifies a durable resident record.
	ResidentID uuid.UUID
	// SubmissionID identifies a clearance submission.
	SubmissionID uuid.UUID
)

func (id TenantID) String() string       { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id ResidentID) String() string     { return uuid.UUID(id).String() }
func (id SubmissionID) String() string   { return uuid.UUID(id).String() }

func (id TenantID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ResidentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id SubmissionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id must not be the nil UUID")
	}
	return u, nil
}

// ParseTenantID validates and converts a string into a TenantID.
func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID(s, "tenant")
	return TenantID(u), err
}

// ParseRegistrationID validates and converts a string into a RegistrationID.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s, "registration")
	return RegistrationID(u), err
}

// ParseResidentID validates and converts a string into a ResidentID.
func ParseResidentID(s string) (ResidentID, error) {
	u, err := parseUUID(s, "resident")
	return ResidentID(u), err
}

// ParseSubmissionID validates and converts a string into a SubmissionID.
func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parseUUID(s, "submission")
	return SubmissionID(u), err
}

// The defined types do not inherit uuid.UUID's methods, so each implements
// the text and SQL interfaces itself. encoding/json picks up the text forms.
// A nil UUID marshals like any other; callers that care use IsNil.

func (id TenantID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id RegistrationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ResidentID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id SubmissionID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *TenantID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RegistrationID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ResidentID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SubmissionID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }

func (id TenantID) Value() (driver.Value, error)       { return uuid.UUID(id).Value() }
func (id RegistrationID) Value() (driver.Value, error) { return uuid.UUID(id).Value() }
func (id ResidentID) Value() (driver.Value, error)     { return uuid.UUID(id).Value() }
func (id SubmissionID) Value() (driver.Value, error)   { return uuid.UUID(id).Value() }

func (id *TenantID) Scan(src any) error       { return (*uuid.UUID)(id).Scan(src) }
func (id *RegistrationID) Scan(src any) error { return (*uuid.UUID)(id).Scan(src) }
func (id *ResidentID) Scan(src any) error     { return (*uuid.UUID)(id).Scan(src) }
func (id *SubmissionID) Scan(src any) error   { return (*uuid.UUID)(id).Scan(src) }
