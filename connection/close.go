package connection

import "context"

// Close unsubscribes every active subscription, stops accepting new
// background work, and closes the underlying driver. It does not wait for
// in-flight supervisor/poller goroutines to observe cancellation — callers
// that need that should cancel the ctx passed to OpenAsync/SubscribeAsync
// and wait on their own signal.
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	keys := make([]string, 0, len(c.subscribed))
	for k := range c.subscribed {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	for _, k := range keys {
		c.Unsubscribe(k)
	}

	c.runtime.Close()
	return c.driver.Close(ctx)
}
