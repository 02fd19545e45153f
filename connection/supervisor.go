package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/alephcore/engine/pacing"
	"github.com/alephcore/engine/record"
)

// connState mirrors the reconnect supervisor's two states (spec.md §4.7).
// Unlike processmgr.ProcessManager2's Preflight/Onflight dual-gate model,
// the supervisor here tracks a single bool sampled from Driver.IsOpen, but
// the edge-detection discipline — compare this tick's sample against the
// last, fire the transition callback exactly once per edge, never let a
// panic in a callback destabilize the loop — is adapted directly from
// ProcessManager2.mainloop/superviseInstance.
type connState int

const (
	stateDisconnected connState = iota
	stateConnected
)

// OpenAsync starts the reconnect supervisor: a background loop that keeps
// the driver open, firing OnConnect/OnDisconnect on each edge and, when
// StoreAndForward is enabled, flushing the buffer on every connect edge.
// Calling OpenAsync more than once on the same Connection is a no-op.
func (c *Connection) OpenAsync(ctx context.Context, timeStep ...time.Duration) {
	c.mu.Lock()
	if c.supervisorOn {
		c.mu.Unlock()
		return
	}
	c.supervisorOn = true
	c.mu.Unlock()

	step := c.timeStep
	if len(timeStep) > 0 {
		step = timeStep[0]
	}
	pacer := pacing.NewFixedPacer(step)

	c.runtime.RunOnThread(func() {
		c.superviseLoop(ctx, pacer)
	})
}

func (c *Connection) superviseLoop(ctx context.Context, pacer *pacing.FixedPacer) {
	state := stateDisconnected

	for {
		if err := pacer.Wait(ctx); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		if c.multiThread {
			state = c.superviseTick(ctx, state)
			continue
		}
		c.runtime.RunOnBackgroundSync(ctx, func(taskCtx context.Context) {
			state = c.superviseTick(taskCtx, state)
		})
	}
}

// superviseTick runs one iteration of the state machine described in
// spec.md §4.7 "Reconnect supervisor": sample is_open, attempt open() if
// closed, detect the edge, fire on_connect/on_disconnect (flushing
// StoreAndForward on a connect edge), and never let an exception escape.
func (c *Connection) superviseTick(ctx context.Context, prev connState) (next connState) {
	defer func() {
		if p := recover(); p != nil {
			c.reportError(fmt.Errorf("supervisor tick panic: %v", p), "", nil)
			next = prev
		}
	}()

	current := c.driver.IsOpen()
	if !current {
		if err := c.driver.Open(ctx); err != nil {
			c.reportError(fmt.Errorf("open: %w", err), "", nil)
			current = false
		} else {
			current = true
		}
	}

	next = stateDisconnected
	if current {
		next = stateConnected
	}

	if prev == stateDisconnected && next == stateConnected {
		c.fireOnConnectSafely()
		if c.saf != nil {
			c.flushOnConnect(ctx)
		}
	} else if prev == stateConnected && next == stateDisconnected {
		c.fireOnDisconnectSafely()
	}

	return next
}

func (c *Connection) fireOnConnectSafely() {
	defer func() {
		if p := recover(); p != nil {
			c.reportError(fmt.Errorf("on_connect panic: %v", p), "", nil)
		}
	}()
	c.callbacks.fireConnect()
}

func (c *Connection) fireOnDisconnectSafely() {
	defer func() {
		if p := recover(); p != nil {
			c.reportError(fmt.Errorf("on_disconnect panic: %v", p), "", nil)
		}
	}()
	c.callbacks.fireDisconnect()
}

func (c *Connection) flushOnConnect(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			c.reportError(fmt.Errorf("store-and-forward flush panic: %v", p), "", nil)
		}
	}()
	errs := c.saf.FlushAll(ctx, func(ctx context.Context, key string, records []record.Record) error {
		return c.driver.Write(ctx, key, records)
	})
	for key, err := range errs {
		c.reportError(fmt.Errorf("flush: %w", err), key, nil)
	}
}
