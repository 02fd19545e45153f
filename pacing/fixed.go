package pacing

import (
	"context"
	"sync"
	"time"
)

// FixedPacer paces at a fixed period. The first call to Wait returns
// immediately and records the current time; subsequent calls sleep until
// period has elapsed since the previously recorded time, then record the
// new reference time — if more than period has already elapsed, Wait
// returns immediately, so a poller that falls behind runs back-to-back
// without oversleeping rather than drifting.
type FixedPacer struct {
	period time.Duration

	mu      sync.Mutex
	last    time.Time
	started bool
}

// NewFixedPacer constructs a FixedPacer with the given period.
func NewFixedPacer(period time.Duration) *FixedPacer {
	return &FixedPacer{period: period}
}

// Wait blocks until the next pacing step, or until ctx is cancelled.
func (p *FixedPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.started = true
		p.last = time.Now()
		p.mu.Unlock()
		return nil
	}
	next := p.last.Add(p.period)
	p.mu.Unlock()

	delay := time.Until(next)
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	p.last = time.Now()
	p.mu.Unlock()
	return nil
}

// AsyncWait is Wait under the cooperative-scheduling name; see the Pacer
// doc comment.
func (p *FixedPacer) AsyncWait(ctx context.Context) error { return p.Wait(ctx) }
