//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lingkod/internal/registration/models"
	"lingkod/pkg/domain"
	"lingkod/pkg/platform/sentinel"
	"lingkod/pkg/testutil/containers"
)

const registrationSchema = `
CREATE TABLE IF NOT EXISTS pending_registrations (
	id uuid PRIMARY KEY,
	tenant_id uuid NOT NULL,
	first_name text NOT NULL,
	middle_name text NOT NULL DEFAULT '',
	last_name text NOT NULL,
	suffix text NOT NULL DEFAULT '',
	birthdate date NOT NULL,
	age int NOT NULL,
	gender text NOT NULL DEFAULT '',
	civil_status text NOT NULL DEFAULT '',
	citizenship text NOT NULL DEFAULT '',
	purok text NOT NULL DEFAULT '',
	contact_number text NOT NULL DEFAULT '',
	photo_url text NOT NULL DEFAULT '',
	status text NOT NULL,
	processed_by text NOT NULL DEFAULT '',
	processed_at timestamptz,
	created_at timestamptz NOT NULL
)`

const residentSchema = `
CREATE TABLE IF NOT EXISTS residents (
	id uuid PRIMARY KEY,
	tenant_id uuid NOT NULL,
	first_name text NOT NULL,
	middle_name text NOT NULL DEFAULT '',
	last_name text NOT NULL,
	suffix text NOT NULL DEFAULT '',
	birthdate date NOT NULL,
	age int NOT NULL,
	gender text NOT NULL DEFAULT '',
	civil_status text NOT NULL DEFAULT '',
	citizenship text NOT NULL DEFAULT '',
	purok text NOT NULL DEFAULT '',
	contact_number text NOT NULL DEFAULT '',
	photo_url text NOT NULL DEFAULT '',
	registration_id uuid,
	created_at timestamptz NOT NULL
)`

type PostgresStoreSuite struct {
	suite.Suite

	pg       *containers.PostgresContainer
	store    *Postgres
	tenantID domain.TenantID
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.Exec(s.T(), registrationSchema, residentSchema)
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.pg.Terminate(s.T())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Exec(s.T(), `TRUNCATE pending_registrations, residents`)
	s.tenantID = domain.TenantID(uuid.New())
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) newRegistration() *models.PendingRegistration {
	return &models.PendingRegistration{
		ID:            domain.RegistrationID(uuid.New()),
		TenantID:      s.tenantID,
		FirstName:     "Juan",
		MiddleName:    "Santos",
		LastName:      "Dela Cruz",
		Birthdate:     time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC),
		Age:           35,
		Gender:        "male",
		CivilStatus:   "single",
		Citizenship:   "Filipino",
		Purok:         "Purok 3",
		ContactNumber: "09171234567",
		PhotoURL:      "https://storage.example/JUAN.jpg",
		Status:        models.StatusPending,
		CreatedAt:     s.now,
	}
}

func (s *PostgresStoreSuite) TestInsertAndGet() {
	ctx := context.Background()
	reg := s.newRegistration()
	s.Require().NoError(s.store.Insert(ctx, reg))

	got, err := s.store.GetByID(ctx, s.tenantID, reg.ID)
	s.Require().NoError(err)
	s.Equal(reg.ID, got.ID)
	s.Equal("Juan", got.FirstName)
	s.Equal("Dela Cruz", got.LastName)
	s.Equal(35, got.Age)
	s.Equal(models.StatusPending, got.Status)
	s.True(got.Birthdate.Equal(reg.Birthdate))
	s.True(got.CreatedAt.Equal(reg.CreatedAt))

	_, err = s.store.GetByID(ctx, domain.TenantID(uuid.New()), reg.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestClaimApprovalIsAtMostOnce() {
	ctx := context.Background()
	reg := s.newRegistration()
	s.Require().NoError(s.store.Insert(ctx, reg))

	s.Require().NoError(s.store.ClaimApproval(ctx, s.tenantID, reg.ID, "kap.santos", s.now))

	err := s.store.ClaimApproval(ctx, s.tenantID, reg.ID, "sk.reyes", s.now)
	s.ErrorIs(err, sentinel.ErrConflict)

	got, err := s.store.GetByID(ctx, s.tenantID, reg.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, got.Status)
	s.Equal("kap.santos", got.ProcessedBy)
	s.Require().NotNil(got.ProcessedAt)
	s.True(got.ProcessedAt.Equal(s.now))
}

func (s *PostgresStoreSuite) TestClaimApprovalUnknownID() {
	err := s.store.ClaimApproval(context.Background(), s.tenantID, domain.RegistrationID(uuid.New()), "kap.santos", s.now)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRevertToPending() {
	ctx := context.Background()
	reg := s.newRegistration()
	s.Require().NoError(s.store.Insert(ctx, reg))
	s.Require().NoError(s.store.ClaimApproval(ctx, s.tenantID, reg.ID, "kap.santos", s.now))

	s.Require().NoError(s.store.RevertToPending(ctx, s.tenantID, reg.ID))

	got, err := s.store.GetByID(ctx, s.tenantID, reg.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)
	s.Empty(got.ProcessedBy)
	s.Nil(got.ProcessedAt)
}

func (s *PostgresStoreSuite) TestListFiltersByStatus() {
	ctx := context.Background()
	first := s.newRegistration()
	s.Require().NoError(s.store.Insert(ctx, first))

	second := s.newRegistration()
	second.ID = domain.RegistrationID(uuid.New())
	second.FirstName = "Maria"
	second.CreatedAt = s.now.Add(time.Minute)
	s.Require().NoError(s.store.Insert(ctx, second))
	s.Require().NoError(s.store.ClaimApproval(ctx, s.tenantID, second.ID, "kap.santos", s.now))

	pending, err := s.store.List(ctx, s.tenantID, models.StatusPending, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(first.ID, pending[0].ID)

	all, err := s.store.List(ctx, s.tenantID, "", 10)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(second.ID, all[0].ID, "newest first")
}

func (s *PostgresStoreSuite) TestFindDuplicateResidentIsCaseInsensitive() {
	ctx := context.Background()
	birthdate := time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC)
	res := &models.Resident{
		ID:        domain.ResidentID(uuid.New()),
		TenantID:  s.tenantID,
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Birthdate: birthdate,
		Age:       35,
		CreatedAt: s.now,
	}
	s.Require().NoError(s.store.InsertResident(ctx, res))

	got, err := s.store.FindDuplicateResident(ctx, s.tenantID, "JUAN", "dela cruz", birthdate)
	s.Require().NoError(err)
	s.Equal(res.ID, got.ID)

	_, err = s.store.FindDuplicateResident(ctx, s.tenantID, "Juan", "Dela Cruz", birthdate.AddDate(1, 0, 0))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateResidentPhoto() {
	ctx := context.Background()
	res := &models.Resident{
		ID:        domain.ResidentID(uuid.New()),
		TenantID:  s.tenantID,
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Birthdate: time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: s.now,
	}
	s.Require().NoError(s.store.InsertResident(ctx, res))

	s.Require().NoError(s.store.UpdateResidentPhoto(ctx, s.tenantID, res.ID, "https://storage.example/new.jpg"))

	got, err := s.store.GetResident(ctx, s.tenantID, res.ID)
	s.Require().NoError(err)
	s.Equal("https://storage.example/new.jpg", got.PhotoURL)

	err = s.store.UpdateResidentPhoto(ctx, s.tenantID, domain.ResidentID(uuid.New()), "x")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSearchResidentsMatchesAllTerms() {
	ctx := context.Background()
	names := [][2]string{{"Juan", "Dela Cruz"}, {"Juana", "Reyes"}, {"Pedro", "Dela Cruz"}}
	for _, n := range names {
		res := &models.Resident{
			ID:        domain.ResidentID(uuid.New()),
			TenantID:  s.tenantID,
			FirstName: n[0],
			LastName:  n[1],
			Birthdate: time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC),
			CreatedAt: s.now,
		}
		s.Require().NoError(s.store.InsertResident(ctx, res))
	}

	got, err := s.store.SearchResidents(ctx, s.tenantID, "juan cruz", 10)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("Juan", got[0].FirstName)

	got, err = s.store.SearchResidents(ctx, s.tenantID, "dela", 10)
	s.Require().NoError(err)
	s.Len(got, 2)
}
