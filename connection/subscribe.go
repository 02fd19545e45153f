package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/alephcore/engine/pacing"
	"github.com/alephcore/engine/record"
)

// SubscribeAsync registers key as subscribed and starts a background
// poller: wait one pacing step, check the key is still subscribed, call
// SafeRead(key), and if a non-empty RecordSet comes back, invoke
// on_new_data. If key is already subscribed this is a no-op. An optional
// timeStep overrides the connection's default pacing period for this
// subscription only.
func (c *Connection) SubscribeAsync(ctx context.Context, key string, timeStep ...time.Duration) {
	c.mu.Lock()
	if _, exists := c.subscribed[key]; exists {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.subscribed[key] = stop
	c.mu.Unlock()

	step := c.timeStep
	if len(timeStep) > 0 {
		step = timeStep[0]
	}
	pacer := pacing.NewFixedPacer(step)

	runLoop := func() {
		defer c.Unsubscribe(key)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if err := pacer.Wait(ctx); err != nil {
				return
			}
			select {
			case <-stop:
				return
			default:
			}
			c.runSubscriptionTick(ctx, key)
		}
	}

	c.runtime.RunOnThread(runLoop)
}

// runSubscriptionTick executes one poller iteration, funneling through the
// shared cooperative worker unless multiThread is configured. Any panic
// surfaces through on_error rather than killing the poller goroutine
// outright, matching "any uncaught exception in the loop ... is surfaced
// via the normal error path" — though the poller still exits afterward,
// since the exception implicitly unsubscribes the key per spec.md §4.7.
func (c *Connection) runSubscriptionTick(ctx context.Context, key string) {
	tick := func(ctx context.Context) {
		defer func() {
			if p := recover(); p != nil {
				c.reportError(fmt.Errorf("subscribe poller panic: %v", p), key, nil)
				c.Unsubscribe(key)
			}
		}()
		rs, ok := c.SafeRead(ctx, key, ReadArgs{})
		if ok && rs.Len() > 0 {
			c.callbacks.fireNewData(key, rs)
		}
	}
	if c.multiThread {
		tick(ctx)
		return
	}
	c.runtime.RunOnBackgroundSync(ctx, tick)
}

// Unsubscribe removes key from the subscribed set. The running poller
// exits at its next iteration boundary — at most one pacing step later —
// since cancellation is cooperative, not preemptive.
func (c *Connection) Unsubscribe(key string) {
	c.mu.Lock()
	stop, exists := c.subscribed[key]
	if exists {
		delete(c.subscribed, key)
	}
	c.mu.Unlock()
	if exists {
		select {
		case <-stop:
			// already closed by a concurrent Unsubscribe/panic path
		default:
			close(stop)
		}
	}
}

// WriteAsync schedules SafeWrite onto the background executor (or, under
// multiThread, onto a fresh goroutine) and returns immediately; any error is
// reported via on_error exactly as SafeWrite already does.
func (c *Connection) WriteAsync(ctx context.Context, key string, records []record.Record) {
	if c.multiThread {
		c.runtime.RunOnThread(func() {
			_ = c.SafeWrite(ctx, key, records)
		})
		return
	}
	c.runtime.RunOnBackground(ctx, func(ctx context.Context) {
		_ = c.SafeWrite(ctx, key, records)
	})
}
