//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lingkod/internal/clearance/models"
	"lingkod/pkg/domain"
	"lingkod/pkg/platform/sentinel"
	"lingkod/pkg/testutil/containers"
)

const submissionSchema = `
CREATE TABLE IF NOT EXISTS clearance_submissions (
	id uuid PRIMARY KEY,
	tenant_id uuid NOT NULL,
	clearance_type text NOT NULL,
	name text NOT NULL,
	form_data jsonb NOT NULL DEFAULT '{}',
	resident_id uuid,
	status text NOT NULL,
	document_url text NOT NULL DEFAULT '',
	processed_by text NOT NULL DEFAULT '',
	processed_at timestamptz,
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
	s.pg.Exec(s.T(), submissionSchema)
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	s.pg.Terminate(s.T())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.pg.Exec(s.T(), `TRUNCATE clearance_submissions`)
	s.tenantID = domain.TenantID(uuid.New())
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) newSubmission(ct models.Type) *models.Submission {
	return &models.Submission{
		ID:            domain.SubmissionID(uuid.New()),
		TenantID:      s.tenantID,
		ClearanceType: ct,
		Name:          "Juan Dela Cruz",
		FormData:      map[string]string{"purpose": "employment", "contact": "09171234567"},
		Status:        models.StatusPending,
		CreatedAt:     s.now,
	}
}

func (s *PostgresStoreSuite) TestInsertAndGet() {
	ctx := context.Background()
	sub := s.newSubmission(models.TypeBarangay)
	s.Require().NoError(s.store.Insert(ctx, sub))

	got, err := s.store.GetByID(ctx, s.tenantID, sub.ID)
	s.Require().NoError(err)
	s.Equal(sub.ID, got.ID)
	s.Equal(models.TypeBarangay, got.ClearanceType)
	s.Equal("employment", got.FormData["purpose"])
	s.True(got.ResidentID.IsNil())
	s.True(got.CreatedAt.Equal(s.now))

	_, err = s.store.GetByID(ctx, s.tenantID, domain.SubmissionID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListPagesNewestFirst() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		sub := s.newSubmission(models.TypeIndigency)
		sub.CreatedAt = s.now.Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.store.Insert(ctx, sub))
	}

	page, total, err := s.store.List(ctx, s.tenantID, "", 2, 0)
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(page, 2)
	s.True(page[0].CreatedAt.After(page[1].CreatedAt))

	rest, total, err := s.store.List(ctx, s.tenantID, "", 2, 2)
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Len(rest, 1)
}

func (s *PostgresStoreSuite) TestTransitionClaimsExactlyOnce() {
	ctx := context.Background()
	sub := s.newSubmission(models.TypeBarangay)
	s.Require().NoError(s.store.Insert(ctx, sub))

	err := s.store.Transition(ctx, s.tenantID, sub.ID, models.StatusPending, models.StatusProcessing, "kap.santos", s.now)
	s.Require().NoError(err)

	err = s.store.Transition(ctx, s.tenantID, sub.ID, models.StatusPending, models.StatusProcessing, "sk.reyes", s.now)
	s.ErrorIs(err, sentinel.ErrConflict)

	err = s.store.Transition(ctx, s.tenantID, domain.SubmissionID(uuid.New()), models.StatusPending, models.StatusProcessing, "kap.santos", s.now)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSetDocumentRequiresProcessing() {
	ctx := context.Background()
	sub := s.newSubmission(models.TypeBarangay)
	s.Require().NoError(s.store.Insert(ctx, sub))

	err := s.store.SetDocument(ctx, s.tenantID, sub.ID, "https://docs.example/d/1/edit", "kap.santos", s.now)
	s.ErrorIs(err, sentinel.ErrConflict, "still pending")

	s.Require().NoError(s.store.Transition(ctx, s.tenantID, sub.ID, models.StatusPending, models.StatusProcessing, "kap.santos", s.now))
	s.Require().NoError(s.store.SetDocument(ctx, s.tenantID, sub.ID, "https://docs.example/d/1/edit", "kap.santos", s.now))

	got, err := s.store.GetByID(ctx, s.tenantID, sub.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, got.Status)
	s.Equal("https://docs.example/d/1/edit", got.DocumentURL)
	s.Equal("kap.santos", got.ProcessedBy)
}

func (s *PostgresStoreSuite) TestRevertToPendingClearsProcessing() {
	ctx := context.Background()
	sub := s.newSubmission(models.TypeBarangay)
	s.Require().NoError(s.store.Insert(ctx, sub))
	s.Require().NoError(s.store.Transition(ctx, s.tenantID, sub.ID, models.StatusPending, models.StatusProcessing, "kap.santos", s.now))

	s.Require().NoError(s.store.RevertToPending(ctx, s.tenantID, sub.ID))

	got, err := s.store.GetByID(ctx, s.tenantID, sub.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)
	s.Empty(got.ProcessedBy)
	s.Nil(got.ProcessedAt)
}

func (s *PostgresStoreSuite) TestListApprovedFacility() {
	ctx := context.Background()

	approved := s.newSubmission(models.TypeFacility)
	s.Require().NoError(s.store.Insert(ctx, approved))
	s.Require().NoError(s.store.Transition(ctx, s.tenantID, approved.ID, models.StatusPending, models.StatusApproved, "kap.santos", s.now))

	pendingFacility := s.newSubmission(models.TypeFacility)
	s.Require().NoError(s.store.Insert(ctx, pendingFacility))

	otherType := s.newSubmission(models.TypeBarangay)
	s.Require().NoError(s.store.Insert(ctx, otherType))
	s.Require().NoError(s.store.Transition(ctx, s.tenantID, otherType.ID, models.StatusPending, models.StatusApproved, "kap.santos", s.now))

	got, err := s.store.ListApprovedFacility(ctx, s.tenantID)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(approved.ID, got[0].ID)
}
