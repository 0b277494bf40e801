// Package retry provides a small retry combinator with exponential backoff.
//
// One policy covers every throttled upstream call: the document templating
// client retries rate-limit errors with Attempts=3, Base=2s (waits of 2s, 4s,
// 8s). The sleeper is injectable so tests run without real delays.
package retry

import (
	"context"
	"time"
)

// Policy controls how Do retries.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// Base is the first backoff delay; each subsequent delay doubles.
	Base time.Duration
	// Sleep is called between attempts. Defaults to a context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy matches the templating service's documented throttling
// behavior: three attempts backed off 2s, 4s, 8s.
var DefaultPolicy = Policy{Attempts: 3, Base: 2 * time.Second}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the policy
// is exhausted. retryable decides whether an error is worth another attempt;
// a non-retryable error propagates immediately. The last error is returned
// when attempts run out.
func Do(ctx context.Context, p Policy, retryable func(error) bool, fn func() error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	delay := p.Base
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !retryable(err) || attempt == p.Attempts {
			return err
		}
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
		delay *= 2
	}
}
