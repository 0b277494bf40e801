package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type failingSink struct{ calls int }

func (s *failingSink) Publish(context.Context, Event) error {
	s.calls++
	return errors.New("broker unreachable")
}

type PublisherSuite struct {
	suite.Suite

	store *MemoryStore
	now   time.Time
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *PublisherSuite) newPublisher(opts ...PublisherOption) *Publisher {
	opts = append(opts, WithPublisherClock(func() time.Time { return s.now }))
	return NewPublisher(s.store, slog.New(slog.DiscardHandler), opts...)
}

func (s *PublisherSuite) TestEmitStampsMissingTimestamp() {
	p := s.newPublisher()

	err := p.Emit(context.Background(), Event{
		TenantID: "t1",
		Action:   ActionRegistrationSubmitted,
	})
	s.Require().NoError(err)

	events, err := p.List(context.Background(), "t1", 10)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(s.now, events[0].Timestamp)
}

func (s *PublisherSuite) TestSinkFailureDoesNotFailEmit() {
	sink := &failingSink{}
	p := s.newPublisher(WithSinks(sink))

	err := p.Emit(context.Background(), Event{TenantID: "t1", Action: ActionAdminLogin})
	s.Require().NoError(err)
	s.Equal(1, sink.calls)
}

func (s *PublisherSuite) TestListFiltersByTenantNewestFirst() {
	p := s.newPublisher()
	ctx := context.Background()

	s.Require().NoError(p.Emit(ctx, Event{TenantID: "t1", Action: "first"}))
	s.Require().NoError(p.Emit(ctx, Event{TenantID: "t2", Action: "other"}))
	s.Require().NoError(p.Emit(ctx, Event{TenantID: "t1", Action: "second"}))

	events, err := p.List(ctx, "t1", 10)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("second", events[0].Action)
	s.Equal("first", events[1].Action)
}
