package connection

import (
	"context"
	"fmt"
	"sync"

	"github.com/alephcore/engine/record"
)

// fakeDriver is a minimal Driver double local to this package's tests. It
// intentionally stays separate from backend/memory.Driver: that package
// imports connection for ReadArgs, so an internal test file in package
// connection importing it back would be an import cycle.
type fakeDriver struct {
	mu     sync.Mutex
	open   bool
	tables map[string][]record.Record

	openFail  bool
	writeFail bool

	opens  int
	reads  int
	writes int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{tables: make(map[string][]record.Record)}
}

func (d *fakeDriver) seed(key string, records ...record.Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables[key] = append(d.tables[key], records...)
}

func (d *fakeDriver) setOpenFailure(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openFail = fail
}

func (d *fakeDriver) setWriteFailure(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeFail = fail
}

func (d *fakeDriver) stats() (opens, reads, writes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens, d.reads, d.writes
}

func (d *fakeDriver) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	if d.openFail {
		return fmt.Errorf("fakeDriver: open failed (injected)")
	}
	d.open = true
	return nil
}

func (d *fakeDriver) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return nil
}

func (d *fakeDriver) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *fakeDriver) Read(ctx context.Context, key string, args ReadArgs) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	rows, ok := d.tables[key]
	if !ok {
		return nil, nil
	}
	return append([]record.Record(nil), rows...), nil
}

func (d *fakeDriver) Write(ctx context.Context, key string, records []record.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes++
	if d.writeFail {
		return fmt.Errorf("fakeDriver: write failed (injected)")
	}
	existing := d.tables[key]
	byID := make(map[string]int, len(existing))
	for i, r := range existing {
		byID[r.ID()] = i
	}
	for _, r := range records {
		if i, ok := byID[r.ID()]; ok {
			existing[i] = r
			continue
		}
		byID[r.ID()] = len(existing)
		existing = append(existing, r)
	}
	d.tables[key] = existing
	return nil
}
