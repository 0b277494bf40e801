package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"lingkod/internal/tenant/models"
	id "lingkod/pkg/domain"
	"lingkod/pkg/platform/sentinel"
)

// Postgres reads tenant configs from the tenants table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed tenant store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const tenantColumns = `
	id, slug, domain, name, full_name, city, province,
	COALESCE(phone, ''), COALESCE(email, ''),
	primary_color, tagline, COALESCE(mission, ''), COALESCE(vision, ''),
	officials, services, contacts, office_hours, projects,
	disclosure_links, google_form_urls, template_ids,
	COALESCE(admin_password_hash, ''), is_active, created_at, updated_at
`

func (s *Postgres) FindByDomain(ctx context.Context, domain string) (*models.Config, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE domain = $1 AND is_active`
	return scanTenant(s.db.QueryRowContext(ctx, query, domain))
}

func (s *Postgres) FindBySlug(ctx context.Context, slug string) (*models.Config, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1 AND is_active`
	return scanTenant(s.db.QueryRowContext(ctx, query, slug))
}

func (s *Postgres) FindAnyActive(ctx context.Context) (*models.Config, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE is_active LIMIT 1`
	return scanTenant(s.db.QueryRowContext(ctx, query))
}

func scanTenant(row *sql.Row) (*models.Config, error) {
	var (
		cfg      models.Config
		tenantID uuid.UUID
		rawTpls  []byte
	)
	err := row.Scan(
		&tenantID, &cfg.Slug, &cfg.Domain, &cfg.Name, &cfg.FullName,
		&cfg.City, &cfg.Province, &cfg.Phone, &cfg.Email,
		&cfg.PrimaryColor, &cfg.Tagline, &cfg.Mission, &cfg.Vision,
		&cfg.Officials, &cfg.Services, &cfg.Contacts, &cfg.OfficeHours,
		&cfg.Projects, &cfg.DisclosureLinks, &cfg.GoogleFormURLs, &rawTpls,
		&cfg.AdminPasswordHash, &cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	cfg.ID = id.TenantID(tenantID)
	if len(rawTpls) > 0 {
		if err := json.Unmarshal(rawTpls, &cfg.TemplateIDs); err != nil {
			return nil, fmt.Errorf("decode template_ids: %w", err)
		}
	}
	return &cfg, nil
}
