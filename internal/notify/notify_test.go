package notify

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	clearancemodels "lingkod/internal/clearance/models"
	regmodels "lingkod/internal/registration/models"
	tenantmodels "lingkod/internal/tenant/models"
)

type DispatcherSuite struct {
	suite.Suite

	sender     *MemorySender
	dispatcher *Dispatcher
	tenant     *tenantmodels.Config
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	s.sender = NewMemorySender()
	s.dispatcher = NewDispatcher(s.sender, "+639170000000", nil, slog.New(slog.DiscardHandler))
	s.tenant = &tenantmodels.Config{Slug: "san-isidro", Name: "Barangay San Isidro"}
}

func (s *DispatcherSuite) TestNewSubmissionGoesToAdmin() {
	s.dispatcher.NewSubmission(context.Background(), s.tenant, &clearancemodels.Submission{
		ClearanceType: clearancemodels.TypeBarangay,
		Name:          "Juan Dela Cruz",
		FormData:      map[string]string{"purpose": "Employment"},
	})

	sent := s.sender.Sent()
	s.Require().Len(sent, 1)
	s.Equal("+639170000000", sent[0].To)
	s.Contains(sent[0].Message, "Juan Dela Cruz")
	s.Contains(sent[0].Message, "Employment")
}

func (s *DispatcherSuite) TestDocumentGeneratedGoesToContact() {
	s.dispatcher.DocumentGenerated(context.Background(), s.tenant, &clearancemodels.Submission{
		ClearanceType: clearancemodels.TypeIndigency,
		Name:          "Maria Santos",
	}, "09171234567")

	sent := s.sender.Sent()
	s.Require().Len(sent, 1)
	s.Equal("+639171234567", sent[0].To, "local numbers are normalized")
	s.Contains(sent[0].Message, "indigency")
}

func (s *DispatcherSuite) TestMissingContactIsSkipped() {
	s.dispatcher.DocumentGenerated(context.Background(), s.tenant, &clearancemodels.Submission{
		ClearanceType: clearancemodels.TypeBarangay,
		Name:          "Maria Santos",
	}, "")
	s.Empty(s.sender.Sent())
}

func (s *DispatcherSuite) TestDeliveryFailureIsSwallowed() {
	s.sender.FailNext = true
	s.dispatcher.RegistrationReceived(context.Background(), s.tenant, &regmodels.PendingRegistration{
		FirstName: "Juan",
		LastName:  "Dela Cruz",
	})
	s.Empty(s.sender.Sent())
}

func (s *DispatcherSuite) TestRegistrationApprovedUsesResidentNumber() {
	s.dispatcher.RegistrationApproved(context.Background(), s.tenant, &regmodels.Resident{
		FirstName:     "Juan",
		LastName:      "Dela Cruz",
		ContactNumber: "+639181234567",
	})

	sent := s.sender.Sent()
	s.Require().Len(sent, 1)
	s.Equal("+639181234567", sent[0].To)
	s.Contains(sent[0].Message, "approved")
}

func TestNormalizeNumber(t *testing.T) {
	cases := map[string]string{
		"09171234567":    "+639171234567",
		"+639171234567":  "+639171234567",
		" 09171234567 ":  "+639171234567",
		"0917123":        "0917123",
		"63 917 1234567": "63 917 1234567",
	}
	for in, want := range cases {
		if got := NormalizeNumber(in); got != want {
			t.Errorf("NormalizeNumber(%q) = %q, want %q", in, got, want)
		}
	}
}
