package connection

import (
	"time"

	"github.com/alephcore/engine/localstorage"
	"github.com/alephcore/engine/model"
	"go.uber.org/zap"
)

// Option configures a Connection at construction time, following the
// teacher repo's constructor-injection style (NewClient(addr, db, log),
// NewRepository(log)) rather than a mutable global config struct.
type Option func(*Connection)

// WithTimeStep sets the default pacing period used by the reconnect
// supervisor and by subscriptions that don't specify their own.
func WithTimeStep(d time.Duration) Option {
	return func(c *Connection) { c.timeStep = d }
}

// WithStoreAndForward enables §4.2 durable write buffering.
func WithStoreAndForward(enabled bool) Option {
	return func(c *Connection) { c.storeAndForwardEnabled = enabled }
}

// WithReportByException enables §4.3 per-key record diffing.
func WithReportByException(enabled bool) Option {
	return func(c *Connection) { c.reportByExceptionEnabled = enabled }
}

// WithMultiThread selects whether background work (pollers, async writes,
// the reconnect supervisor) runs on dedicated goroutines (true) or on the
// shared cooperative executor (false, the default).
func WithMultiThread(enabled bool) Option {
	return func(c *Connection) { c.multiThread = enabled }
}

// WithLocalStorage sets the LocalStorage instance backing
// StoreAndForward/ReportByException state. Defaults to a process-local
// localstorage.MemoryStorage if not set.
func WithLocalStorage(s localstorage.Storage) Option {
	return func(c *Connection) { c.storage = s }
}

// WithModels binds keys to Models; safe_write/safe_read validate against
// the model bound to the key being accessed, if any.
func WithModels(models map[string]*model.Model) Option {
	return func(c *Connection) { c.models = models }
}

// WithCallbacks sets the consumer-supplied hooks.
func WithCallbacks(cb Callbacks) Option {
	return func(c *Connection) { c.callbacks = cb }
}

// WithLogger overrides the default no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Connection) { c.log = log.Named("conn").Named(c.name) }
}
