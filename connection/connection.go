package connection

import (
	"sync"
	"time"

	"github.com/alephcore/engine/asyncruntime"
	"github.com/alephcore/engine/localstorage"
	"github.com/alephcore/engine/model"
	"github.com/alephcore/engine/reportbyexception"
	"github.com/alephcore/engine/storeforward"
	"go.uber.org/zap"
)

const defaultTimeStep = 5 * time.Second

// Connection is the central abstraction of the engine: it wraps a Driver
// with the full lifecycle, safety, and concurrency envelope of spec.md
// §4.7. The zero value is not usable; construct with New.
type Connection struct {
	name   string
	driver Driver
	log    *zap.Logger

	timeStep                 time.Duration
	storeAndForwardEnabled   bool
	reportByExceptionEnabled bool
	multiThread              bool
	storage                  localstorage.Storage
	models                   map[string]*model.Model
	callbacks                Callbacks

	runtime *asyncruntime.Runtime
	saf     *storeforward.StoreAndForward
	rbe     *reportbyexception.ReportByException

	mu           sync.Mutex
	subscribed   map[string]chan struct{}
	supervisorOn bool
}

// New constructs a Connection named name around driver, applying opts. name
// identifies the connection's StoreAndForward namespace
// (STORE_AND_FORWARD_<name>) and must be stable and unique among
// connections sharing a LocalStorage.
func New(name string, driver Driver, opts ...Option) *Connection {
	c := &Connection{
		name:       name,
		driver:     driver,
		log:        zap.NewNop(),
		timeStep:   defaultTimeStep,
		subscribed: make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.storage == nil {
		c.storage = localstorage.NewMemoryStorage()
	}
	c.runtime = asyncruntime.New(c.log)
	if c.storeAndForwardEnabled {
		c.saf = storeforward.New(c.name, c.storage)
	}
	if c.reportByExceptionEnabled {
		c.rbe = reportbyexception.New(c.storage)
	}
	return c
}

// Name returns the connection's configured name.
func (c *Connection) Name() string { return c.name }

// modelFor returns the Model bound to key, or nil if none.
func (c *Connection) modelFor(key string) *model.Model {
	if c.models == nil {
		return nil
	}
	return c.models[key]
}
