package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDrainsThroughWorker(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	store := NewMemoryStore()
	publisher := NewPublisher(store, logger)
	queue := NewQueue(8, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewWorker(publisher, queue.Inbox()).Run(ctx)
	}()

	require.NoError(t, queue.Emit(ctx, Event{TenantID: "t1", Action: ActionAdminLogin}))
	require.NoError(t, queue.Emit(ctx, Event{TenantID: "t1", Action: ActionSubmissionReceived}))

	require.Eventually(t, func() bool {
		events, err := store.ListByTenant(ctx, "t1", 10)
		return err == nil && len(events) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestQueueNeverBlocks(t *testing.T) {
	queue := NewQueue(1, slog.New(slog.DiscardHandler))

	// no worker attached; the second emit overflows and is dropped
	assert.NoError(t, queue.Emit(context.Background(), Event{Action: ActionAdminLogin}))
	assert.NoError(t, queue.Emit(context.Background(), Event{Action: ActionAdminLogin}))
	assert.Len(t, queue.Inbox(), 1)
}
