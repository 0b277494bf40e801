package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingkod/internal/tenant/models"
	id "lingkod/pkg/domain"
)

func testConfig(domain string) *models.Config {
	return &models.Config{
		ID:       id.TenantID(uuid.New()),
		Slug:     "banadero",
		Domain:   domain,
		IsActive: true,
	}
}

func TestMemoryTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewMemory(WithClock(clock))
	ctx := context.Background()

	cfg := testConfig("banadero.gov.ph")
	c.Set(ctx, cfg.Domain, cfg, 5*time.Minute)

	got, ok := c.Get(ctx, cfg.Domain)
	require.True(t, ok)
	assert.Same(t, cfg, got)

	// One second before expiry still hits.
	now = now.Add(5*time.Minute - time.Second)
	_, ok = c.Get(ctx, cfg.Domain)
	assert.True(t, ok)

	// Past expiry misses.
	now = now.Add(2 * time.Second)
	_, ok = c.Get(ctx, cfg.Domain)
	assert.False(t, ok)
}

func TestMemoryInvalidate(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	a := testConfig("a.gov.ph")
	b := testConfig("b.gov.ph")
	c.Set(ctx, a.Domain, a, time.Minute)
	c.Set(ctx, b.Domain, b, time.Minute)

	c.Invalidate(ctx, a.Domain)
	_, ok := c.Get(ctx, a.Domain)
	assert.False(t, ok)
	_, ok = c.Get(ctx, b.Domain)
	assert.True(t, ok)

	c.InvalidateAll(ctx)
	_, ok = c.Get(ctx, b.Domain)
	assert.False(t, ok)
}
