package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	m := NewSessionManager("test-secret")

	token, err := m.Issue("kap.santos", time.Now())
	require.NoError(t, err)

	user, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "kap.santos", user)
}

func TestSessionWrongSecret(t *testing.T) {
	token, err := NewSessionManager("secret-a").Issue("kap.santos", time.Now())
	require.NoError(t, err)

	_, err = NewSessionManager("secret-b").Validate(token)
	assert.Error(t, err)
}

func TestSessionExpired(t *testing.T) {
	m := NewSessionManager("test-secret")

	token, err := m.Issue("kap.santos", time.Now().Add(-25*time.Hour))
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestSessionGarbageToken(t *testing.T) {
	m := NewSessionManager("test-secret")
	_, err := m.Validate("not.a.token")
	assert.Error(t, err)
}

func TestLockoutFixedWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	l := NewLockout(WithLockoutClock(func() time.Time { return now }))

	for i := 0; i < MaxLoginAttempts; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "attempt %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"), "sixth attempt within the window is blocked")

	// other clients are unaffected
	assert.True(t, l.Allow("10.0.0.2"))

	// the window expires and the counter resets
	now = now.Add(LockoutWindow + time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestLockoutPrune(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	l := NewLockout(WithLockoutClock(func() time.Time { return now }))

	l.Allow("10.0.0.1")
	now = now.Add(LockoutWindow + time.Second)
	l.Prune()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.attempts)
}
