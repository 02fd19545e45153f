// Package connection implements the Connection Engine: the concurrency and
// reliability layer of spec.md §4.7 that sits between user code and any
// backend-specific Driver. It composes validation, report-by-exception
// diffing, store-and-forward buffering, and background scheduling on top
// of five backend-supplied primitives.
package connection

import (
	"context"

	"github.com/alephcore/engine/filter"
	"github.com/alephcore/engine/record"
)

// Driver is the backend interface the core composes safety, buffering, and
// scheduling on top of, per spec.md §6.1. A concrete backend (relational,
// document, MQTT, PLC, or a test double) is a value implementing Driver;
// Connection holds the interface, never a concrete type.
type Driver interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	IsOpen() bool

	// Read returns a record.Record, a []record.Record, or nil (meaning "no
	// data found / key unknown" — safe_read turns that into InvalidKey).
	Read(ctx context.Context, key string, args ReadArgs) (any, error)

	Write(ctx context.Context, key string, records []record.Record) error
}

// ReadArgs carries the standard kwargs recognized across backends per
// spec.md §4.7; a given backend honors whichever of these apply to it.
type ReadArgs struct {
	Since  *int64 // lower-bound timestamp, inclusive
	Until  *int64 // upper-bound timestamp, exclusive
	Limit  *int
	Offset *int
	Order  string // field name; a leading "-" reverses it
	Filter filter.Filter
}
