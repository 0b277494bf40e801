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
)

type MemoryStoreSuite struct {
	suite.Suite

	store    *InMemory
	tenantID domain.TenantID
	now      time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.tenantID = domain.TenantID(uuid.New())
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) newRegistration() *models.PendingRegistration {
	return &models.PendingRegistration{
		ID:        domain.RegistrationID(uuid.New()),
		TenantID:  s.tenantID,
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Birthdate: time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC),
		Age:       35,
		PhotoURL:  "https://storage.example/JUAN.jpg",
		Status:    models.StatusPending,
		CreatedAt: s.now,
	}
}

func (s *MemoryStoreSuite) TestClaimApproval() {
	ctx := context.Background()
	reg := s.newRegistration()
	s.Require().NoError(s.store.Insert(ctx, reg))

	s.Run("first claim wins", func() {
		err := s.store.ClaimApproval(ctx, s.tenantID, reg.ID, "admin", s.now)
		s.Require().NoError(err)

		got, err := s.store.GetByID(ctx, s.tenantID, reg.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, got.Status)
		s.Equal("admin", got.ProcessedBy)
		s.Require().NotNil(got.ProcessedAt)
		s.Equal(s.now, *got.ProcessedAt)
	})

	s.Run("second claim conflicts", func() {
		err := s.store.ClaimApproval(ctx, s.tenantID, reg.ID, "other-admin", s.now)
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("unknown id is not found", func() {
		err := s.store.ClaimApproval(ctx, s.tenantID, domain.RegistrationID(uuid.New()), "admin", s.now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("wrong tenant behaves like missing", func() {
		err := s.store.ClaimApproval(ctx, domain.TenantID(uuid.New()), reg.ID, "admin", s.now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestRevertToPendingClearsProcessingFields() {
	ctx := context.Background()
	reg := s.newRegistration()
	s.Require().NoError(s.store.Insert(ctx, reg))
	s.Require().NoError(s.store.ClaimApproval(ctx, s.tenantID, reg.ID, "admin", s.now))

	s.Require().NoError(s.store.RevertToPending(ctx, s.tenantID, reg.ID))

	got, err := s.store.GetByID(ctx, s.tenantID, reg.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)
	s.Empty(got.ProcessedBy)
	s.Nil(got.ProcessedAt)

	s.NoError(s.store.ClaimApproval(ctx, s.tenantID, reg.ID, "admin", s.now))
}

func (s *MemoryStoreSuite) TestListFiltersByStatus() {
	ctx := context.Background()
	pending := s.newRegistration()
	s.Require().NoError(s.store.Insert(ctx, pending))

	rejected := s.newRegistration()
	rejected.CreatedAt = s.now.Add(time.Minute)
	s.Require().NoError(s.store.Insert(ctx, rejected))
	s.Require().NoError(s.store.UpdateStatus(ctx, s.tenantID, rejected.ID, models.StatusRejected, "admin", s.now))

	all, err := s.store.List(ctx, s.tenantID, "", 100)
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal(rejected.ID, all[0].ID, "newest first")

	onlyPending, err := s.store.List(ctx, s.tenantID, models.StatusPending, 100)
	s.Require().NoError(err)
	s.Require().Len(onlyPending, 1)
	s.Equal(pending.ID, onlyPending[0].ID)
}

func (s *MemoryStoreSuite) TestFindDuplicateResidentIsCaseInsensitive() {
	ctx := context.Background()
	res := &models.Resident{
		ID:        domain.ResidentID(uuid.New()),
		TenantID:  s.tenantID,
		FirstName: "Maria",
		LastName:  "Santos",
		Birthdate: time.Date(1985, 7, 20, 0, 0, 0, 0, time.UTC),
		CreatedAt: s.now,
	}
	s.Require().NoError(s.store.InsertResident(ctx, res))

	s.Run("matches ignoring case", func() {
		got, err := s.store.FindDuplicateResident(ctx, s.tenantID, "MARIA", "santos", res.Birthdate)
		s.Require().NoError(err)
		s.Equal(res.ID, got.ID)
	})

	s.Run("different birthdate is no duplicate", func() {
		_, err := s.store.FindDuplicateResident(ctx, s.tenantID, "Maria", "Santos",
			time.Date(1985, 7, 21, 0, 0, 0, 0, time.UTC))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("other tenant is no duplicate", func() {
		_, err := s.store.FindDuplicateResident(ctx, domain.TenantID(uuid.New()), "Maria", "Santos", res.Birthdate)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestSearchResidents() {
	ctx := context.Background()
	for i, name := range []struct{ first, middle, last string }{
		{"Juan", "Peña", "Dela Cruz"},
		{"Juana", "", "Reyes"},
		{"Pedro", "", "Cruz"},
	} {
		s.Require().NoError(s.store.InsertResident(ctx, &models.Resident{
			ID:         domain.ResidentID(uuid.New()),
			TenantID:   s.tenantID,
			FirstName:  name.first,
			MiddleName: name.middle,
			LastName:   name.last,
			CreatedAt:  s.now.Add(time.Duration(i) * time.Minute),
		}))
	}

	s.Run("single term matches substring", func() {
		got, err := s.store.SearchResidents(ctx, s.tenantID, "cruz", 10)
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("all terms must match", func() {
		got, err := s.store.SearchResidents(ctx, s.tenantID, "juan cruz", 10)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("Juan", got[0].FirstName)
	})

	s.Run("empty query returns nothing", func() {
		got, err := s.store.SearchResidents(ctx, s.tenantID, "   ", 10)
		s.Require().NoError(err)
		s.Empty(got)
	})

	s.Run("limit caps results", func() {
		got, err := s.store.SearchResidents(ctx, s.tenantID, "a", 1)
		s.Require().NoError(err)
		s.Len(got, 1)
	})
}
