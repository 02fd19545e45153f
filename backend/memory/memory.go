// Package memory implements an in-memory connection.Driver used by the
// engine's own tests and by integration tests of consumers that don't want
// a live backend. It keeps one ordered slice of records per key, all guarded
// by a single mutex (mirroring internal/repo/repoexample's mutex-guarded store-of-stores
// shape) and supports injected failures and latency so callers can exercise
// the reconnect supervisor and safe_read/safe_write error paths.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alephcore/engine/connection"
	"github.com/alephcore/engine/filter"
	"github.com/alephcore/engine/record"
)

// FailMode selects what an injected failure looks like.
type FailMode int

const (
	// FailNone performs the operation normally.
	FailNone FailMode = iota
	// FailError returns an error from the operation.
	FailError
	// FailClosed makes IsOpen report false and Read/Write return
	// connection-not-open-shaped errors, as if the backend dropped.
	FailClosed
)

// Driver is a testing connection.Driver: an in-memory table keyed by string,
// each holding an ordered set of records. The zero value is not usable;
// construct with New.
type Driver struct {
	mu     sync.Mutex
	open   bool
	tables map[string][]record.Record

	// Latency, if non-zero, is slept at the start of every Open/Read/Write
	// call, before the open/failure checks, to simulate a slow backend.
	Latency time.Duration

	openFail  FailMode
	readFail  FailMode
	writeFail FailMode

	openCalls  int
	readCalls  int
	writeCalls int
}

// New constructs an unopened Driver with no tables.
func New() *Driver {
	return &Driver{tables: make(map[string][]record.Record)}
}

// SetOpenFailure configures the outcome of the next Open calls until
// changed again.
func (d *Driver) SetOpenFailure(mode FailMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openFail = mode
}

// SetReadFailure configures the outcome of subsequent Read calls.
func (d *Driver) SetReadFailure(mode FailMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readFail = mode
}

// SetWriteFailure configures the outcome of subsequent Write calls.
func (d *Driver) SetWriteFailure(mode FailMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeFail = mode
}

// Seed installs records under key directly, bypassing Write, useful for
// arranging a read fixture.
func (d *Driver) Seed(key string, records ...record.Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables[key] = append(append([]record.Record(nil), d.tables[key]...), records...)
}

// Stats returns the number of Open/Read/Write calls observed so far.
func (d *Driver) Stats() (opens, reads, writes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openCalls, d.readCalls, d.writeCalls
}

func (d *Driver) sleep() {
	if d.Latency > 0 {
		time.Sleep(d.Latency)
	}
}

// Open marks the driver open unless an open failure is configured.
func (d *Driver) Open(ctx context.Context) error {
	d.sleep()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openCalls++
	if d.openFail != FailNone {
		return fmt.Errorf("memory: open failed (injected)")
	}
	d.open = true
	return nil
}

// Close marks the driver closed.
func (d *Driver) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return nil
}

// IsOpen reports the driver's open state, forced false under FailClosed.
func (d *Driver) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readFail == FailClosed || d.writeFail == FailClosed {
		return false
	}
	return d.open
}

// Read returns the records stored under key, applying ReadArgs' Since,
// Until, Filter, Order, Offset, and Limit, in that order. A key that has
// never been written or seeded returns nil (spec.md's "no data" signal).
func (d *Driver) Read(ctx context.Context, key string, args connection.ReadArgs) (any, error) {
	d.sleep()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readCalls++

	if d.readFail == FailError {
		return nil, fmt.Errorf("memory: read failed (injected)")
	}
	if d.readFail == FailClosed || !d.open {
		return nil, fmt.Errorf("memory: connection not open")
	}

	rows, ok := d.tables[key]
	if !ok {
		return nil, nil
	}

	out := make([]record.Record, 0, len(rows))
	for _, r := range rows {
		if r.Deleted() {
			continue
		}
		if args.Since != nil && r.T() < *args.Since {
			continue
		}
		if args.Until != nil && r.T() >= *args.Until {
			continue
		}
		if args.Filter != nil && !filter.Matches(args.Filter, r) {
			continue
		}
		out = append(out, stripDeletedField(r))
	}

	sortRecords(out, args.Order)

	if args.Offset != nil && *args.Offset > 0 {
		if *args.Offset >= len(out) {
			out = nil
		} else {
			out = out[*args.Offset:]
		}
	}
	if args.Limit != nil && *args.Limit >= 0 && *args.Limit < len(out) {
		out = out[:*args.Limit]
	}

	return out, nil
}

// Write upserts records into key's table, keyed by id_ (or t if id_ is
// absent), per the same identity rule record.RecordSet uses.
func (d *Driver) Write(ctx context.Context, key string, records []record.Record) error {
	d.sleep()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeCalls++

	if d.writeFail == FailError {
		return fmt.Errorf("memory: write failed (injected)")
	}
	if d.writeFail == FailClosed || !d.open {
		return fmt.Errorf("memory: connection not open")
	}

	existing := d.tables[key]
	byID := make(map[string]int, len(existing))
	for i, r := range existing {
		byID[identityOf(r)] = i
	}
	for _, r := range records {
		id := identityOf(r)
		if i, ok := byID[id]; ok {
			existing[i] = r
			continue
		}
		byID[id] = len(existing)
		existing = append(existing, r)
	}
	d.tables[key] = existing
	return nil
}

func identityOf(r record.Record) string {
	if id := r.ID(); id != "" {
		return id
	}
	return fmt.Sprintf("t:%d", r.T())
}

// stripDeletedField drops deleted_ from a visible row: per spec.md §8 S6, an
// un-deleted record read back after a write of {deleted_:false} carries
// neither deleted_ nor an internal primary-key field — deleted_ is
// write-side bookkeeping, not part of a relational backend's normal read
// projection.
func stripDeletedField(r record.Record) record.Record {
	if _, ok := r[record.FieldDeleted]; !ok {
		return r
	}
	out := r.Clone()
	delete(out, record.FieldDeleted)
	return out
}

func sortRecords(rows []record.Record, order string) {
	if order == "" {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].T() < rows[j].T() })
		return
	}
	field := order
	desc := false
	if len(order) > 0 && order[0] == '-' {
		desc = true
		field = order[1:]
	}
	sort.SliceStable(rows, func(i, j int) bool {
		less := compareField(rows[i][field], rows[j][field])
		if desc {
			return less > 0
		}
		return less < 0
	})
}

// compareField compares two field values, returning -1, 0, or 1. Numeric
// values compare numerically; anything else falls back to string form.
func compareField(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
