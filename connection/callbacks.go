package connection

import (
	"github.com/alephcore/engine/erralph"
	"github.com/alephcore/engine/record"
)

// Callbacks are the consumer-supplied hooks of spec.md §4.7. All have
// empty defaults. They are invoked on whatever goroutine performs the
// triggering operation — user code must not assume affinity between calls.
type Callbacks struct {
	OnNewData    func(key string, rs *record.RecordSet)
	OnError      func(err *erralph.Error)
	OnConnect    func()
	OnDisconnect func()
}

func (c Callbacks) fireNewData(key string, rs *record.RecordSet) {
	if c.OnNewData != nil {
		c.OnNewData(key, rs)
	}
}

func (c Callbacks) fireError(err *erralph.Error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

func (c Callbacks) fireConnect() {
	if c.OnConnect != nil {
		c.OnConnect()
	}
}

func (c Callbacks) fireDisconnect() {
	if c.OnDisconnect != nil {
		c.OnDisconnect()
	}
}
