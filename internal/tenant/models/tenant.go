package models

import (
	"encoding/json"
	"time"

	id "lingkod/pkg/domain"
)

// Config is one barangay's configuration record.
//
// Invariants:
//   - Domain is the cleaned public host name, unique across tenants
//   - Slug is unique and stable; storage buckets are keyed by it
//   - Inactive tenants never resolve: deactivation is an immediate boundary
//
// Config is immutable per request: the resolver hands out whatever the cache
// holds, and edits made by the out-of-band admin surface become visible on
// cache expiry or explicit invalidation. This core never writes it.
type Config struct {
	ID       id.TenantID `json:"id"`
	Slug     string      `json:"slug"`
	Domain   string      `json:"domain"`
	Name     string      `json:"name"`
	FullName string      `json:"full_name"`
	City     string      `json:"city"`
	Province string      `json:"province"`
	Phone    string      `json:"phone"`
	Email    string      `json:"email"`

	PrimaryColor string `json:"primary_color"`
	Tagline      string `json:"tagline"`
	Mission      string `json:"mission"`
	Vision       string `json:"vision"`

	// Content blobs rendered by the (out of scope) presentation layer.
	// Opaque here: we store and serve them, never interpret them.
	Officials       json.RawMessage `json:"officials"`
	Services        json.RawMessage `json:"services"`
	Contacts        json.RawMessage `json:"contacts"`
	OfficeHours     json.RawMessage `json:"office_hours"`
	Projects        json.RawMessage `json:"projects"`
	DisclosureLinks json.RawMessage `json:"disclosure_links"`
	GoogleFormURLs  json.RawMessage `json:"google_form_urls"`

	// TemplateIDs maps clearance type -> templating-service document id.
	TemplateIDs map[string]string `json:"template_ids"`

	// AdminPasswordHash is the bcrypt hash for this tenant's admin login.
	AdminPasswordHash string `json:"-"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateID returns the templating document id configured for a clearance
// type, empty when the tenant has none.
func (c *Config) TemplateID(clearanceType string) string {
	if c.TemplateIDs == nil {
		return ""
	}
	return c.TemplateIDs[clearanceType]
}
