//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lingkod/pkg/platform/sentinel"
	"lingkod/pkg/testutil/containers"
)

const tenantSchema = `
CREATE TABLE IF NOT EXISTS tenants (
	id uuid PRIMARY KEY,
	slug text NOT NULL UNIQUE,
	domain text NOT NULL UNIQUE,
	name text NOT NULL,
	full_name text NOT NULL DEFAULT '',
	city text NOT NULL DEFAULT '',
	province text NOT NULL DEFAULT '',
	phone text,
	email text,
	primary_color text NOT NULL DEFAULT '',
	tagline text NOT NULL DEFAULT '',
	mission text,
	vision text,
	officials jsonb NOT NULL DEFAULT '{}',
	services jsonb NOT NULL DEFAULT '[]',
	contacts jsonb NOT NULL DEFAULT '{}',
	office_hours jsonb NOT NULL DEFAULT '{}',
	projects jsonb NOT NULL DEFAULT '[]',
	disclosure_links jsonb NOT NULL DEFAULT '{}',
	google_form_urls jsonb NOT NULL DEFAULT '{}',
	template_ids jsonb NOT NULL DEFAULT '{}',
	admin_password_hash text,
	is_active boolean NOT NULL DEFAULT true,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
)`

type PostgresStoreSuite struct {
	suite.Suite

	pg    *containers.PostgresContainer
	store *Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Exec(s.T(), tenantSchema)
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.pg.Terminate(s.T())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Exec(s.T(), `TRUNCATE tenants`)
}

func (s *PostgresStoreSuite) seed(slug, domain string, active bool) uuid.UUID {
	id := uuid.New()
	s.pg.Exec(s.T(), `
		INSERT INTO tenants (id, slug, domain, name, template_ids, is_active)
		VALUES ('`+id.String()+`', '`+slug+`', '`+domain+`', 'Barangay `+slug+`',
			'{"barangay": "tpl-`+slug+`"}', `+boolLit(active)+`)`)
	return id
}

func boolLit(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (s *PostgresStoreSuite) TestFindByDomain() {
	id := s.seed("san-isidro", "sanisidro.gov.ph", true)

	cfg, err := s.store.FindByDomain(context.Background(), "sanisidro.gov.ph")
	s.Require().NoError(err)
	s.Equal(id.String(), uuid.UUID(cfg.ID).String())
	s.Equal("san-isidro", cfg.Slug)
	s.Equal("tpl-san-isidro", cfg.TemplateID("barangay"))
	s.True(cfg.IsActive)

	_, err = s.store.FindByDomain(context.Background(), "unknown.gov.ph")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestInactiveTenantsNeverResolve() {
	s.seed("mabini", "mabini.gov.ph", false)

	_, err := s.store.FindByDomain(context.Background(), "mabini.gov.ph")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindBySlug(context.Background(), "mabini")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindAnyActive(context.Background())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestFindBySlugAndAnyActive() {
	s.seed("san-isidro", "sanisidro.gov.ph", true)

	cfg, err := s.store.FindBySlug(context.Background(), "san-isidro")
	s.Require().NoError(err)
	s.Equal("sanisidro.gov.ph", cfg.Domain)

	any, err := s.store.FindAnyActive(context.Background())
	s.Require().NoError(err)
	s.Equal("san-isidro", any.Slug)
}
