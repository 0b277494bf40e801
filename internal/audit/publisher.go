package audit

import (
	"context"
	"log/slog"
	"time"
)

// Sink receives a copy of every event, typically for shipping it off-process.
// Sink failures never block the request path.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
	clock  func() time.Time
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithSinks adds off-process sinks that receive each event after it is stored.
func WithSinks(sinks ...Sink) PublisherOption {
	return func(p *Publisher) { p.sinks = append(p.sinks, sinks...) }
}

// WithPublisherClock overrides the timestamp source for tests.
func WithPublisherClock(clock func() time.Time) PublisherOption {
	return func(p *Publisher) { p.clock = clock }
}

func NewPublisher(store Store, logger *slog.Logger, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: logger, clock: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stores the event and fans it out to sinks. Sink errors are logged and
// swallowed; the store append error is the only one returned.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.clock()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			p.logger.Warn("audit sink publish failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
	return nil
}

// List returns the most recent events for one tenant.
func (p *Publisher) List(ctx context.Context, tenantID string, limit int) ([]Event, error) {
	return p.store.ListByTenant(ctx, tenantID, limit)
}
