package admin

import (
	"context"
	"sync"
	"time"
)

const (
	// MaxLoginAttempts per IP within one LockoutWindow.
	MaxLoginAttempts = 5
	LockoutWindow    = time.Minute

	pruneInterval = 5 * time.Minute
)

type attemptEntry struct {
	count   int
	resetAt time.Time
}

// Lockout is a fixed-window per-IP login rate limiter.
type Lockout struct {
	mu       sync.Mutex
	attempts map[string]attemptEntry
	max      int
	window   time.Duration
	clock    func() time.Time
}

// LockoutOption configures a Lockout.
type LockoutOption func(*Lockout)

// WithLockoutClock injects a clock for tests.
func WithLockoutClock(clock func() time.Time) LockoutOption {
	return func(l *Lockout) { l.clock = clock }
}

func NewLockout(opts ...LockoutOption) *Lockout {
	l := &Lockout{
		attempts: make(map[string]attemptEntry),
		max:      MaxLoginAttempts,
		window:   LockoutWindow,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow records one attempt from ip and reports whether it is within the
// window's budget. The window starts at the first attempt and is not slid by
// later ones.
func (l *Lockout) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	entry, ok := l.attempts[ip]
	if !ok || now.After(entry.resetAt) {
		l.attempts[ip] = attemptEntry{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	entry.count++
	l.attempts[ip] = entry
	return entry.count <= l.max
}

// Prune drops expired windows.
func (l *Lockout) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	for ip, entry := range l.attempts {
		if now.After(entry.resetAt) {
			delete(l.attempts, ip)
		}
	}
}

// Run prunes periodically until the context ends.
func (l *Lockout) Run(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}
