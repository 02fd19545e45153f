// Package storeforward implements the durable write buffer of spec.md
// §4.2: when a backend is unavailable, writes are persisted per backend-key
// and replayed on reconnect.
package storeforward

import (
	"context"
	"fmt"
	"sync"

	"github.com/alephcore/engine/localstorage"
	"github.com/alephcore/engine/record"
	"golang.org/x/sync/errgroup"
)

// WriteFunc is the backend write primitive StoreAndForward drives: write
// records under key, returning an error on failure.
type WriteFunc func(ctx context.Context, key string, records []record.Record) error

// StoreAndForward buffers writes for one owning Connection (identified by
// name) in a shared LocalStorage, under the namespace
// STORE_AND_FORWARD_<name> per spec.md §6.4.
type StoreAndForward struct {
	name    string
	storage localstorage.Storage

	// mu serializes buffer mutation for this instance. StoreAndForward is
	// owned by a single Connection, but multi_thread connections may run
	// safe_write from more than one goroutine concurrently, so the buffer
	// itself still needs its own lock (the shared LocalStorage's locking
	// only protects its own map, not read-modify-write sequences spanning
	// two calls).
	mu sync.Mutex
}

// New constructs a StoreAndForward for the connection identified by name,
// persisting into storage.
func New(name string, storage localstorage.Storage) *StoreAndForward {
	return &StoreAndForward{name: name, storage: storage}
}

func (sf *StoreAndForward) storageKey() string {
	return "STORE_AND_FORWARD_" + sf.name
}

// loadBufferLocked reads the full key→records buffer from storage. Caller
// must hold mu.
func (sf *StoreAndForward) loadBufferLocked(ctx context.Context) (map[string][]record.Record, error) {
	v, err := sf.storage.Get(ctx, sf.storageKey(), map[string][]record.Record{})
	if err != nil {
		return nil, fmt.Errorf("load buffer: %w", err)
	}
	buf, err := asBuffer(v)
	if err != nil {
		return nil, fmt.Errorf("decode buffer: %w", err)
	}
	return buf, nil
}

func (sf *StoreAndForward) saveBufferLocked(ctx context.Context, buf map[string][]record.Record) error {
	if err := sf.storage.Set(ctx, sf.storageKey(), buf); err != nil {
		return fmt.Errorf("save buffer: %w", err)
	}
	return nil
}

// AddAndFlush appends records to the buffer for key, persists that buffer
// (durable before attempting the write, per spec.md §4.2), then attempts
// write(key, buffered_records). On success the buffer for key is cleared
// and persisted; on failure the buffer is left intact and the error is
// returned to the caller.
func (sf *StoreAndForward) AddAndFlush(ctx context.Context, key string, records []record.Record, write WriteFunc) error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	buf, err := sf.loadBufferLocked(ctx)
	if err != nil {
		return err
	}
	buf[key] = append(buf[key], records...)
	if err := sf.saveBufferLocked(ctx, buf); err != nil {
		return err
	}

	pending := buf[key]
	if err := write(ctx, key, pending); err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}

	delete(buf, key)
	return sf.saveBufferLocked(ctx, buf)
}

// FlushAll attempts, for every key with a non-empty buffer, a single write
// of the entire buffered sequence. Writes across keys run concurrently
// (cross-key order is not guaranteed per spec.md §4.2) via
// golang.org/x/sync/errgroup; keys that succeed are cleared from the buffer
// and the result persisted once all writes complete. The returned map
// holds an error per key that failed (absent keys succeeded or had nothing
// buffered).
func (sf *StoreAndForward) FlushAll(ctx context.Context, write WriteFunc) map[string]error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	errs := make(map[string]error)

	buf, err := sf.loadBufferLocked(ctx)
	if err != nil {
		errs["*"] = err
		return errs
	}

	type outcome struct {
		key string
		err error
	}
	results := make(chan outcome, len(buf))

	g, gctx := errgroup.WithContext(ctx)
	for key, records := range buf {
		if len(records) == 0 {
			continue
		}
		key, records := key, records
		g.Go(func() error {
			if err := write(gctx, key, records); err != nil {
				results <- outcome{key: key, err: fmt.Errorf("write key %q: %w", key, err)}
				return nil
			}
			results <- outcome{key: key}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	dirty := false
	for o := range results {
		if o.err != nil {
			errs[o.key] = o.err
			continue
		}
		delete(buf, o.key)
		dirty = true
	}

	if dirty {
		if err := sf.saveBufferLocked(ctx, buf); err != nil {
			errs["*"] = err
		}
	}

	return errs
}

// asBuffer normalizes whatever LocalStorage handed back (a fresh
// map[string][]record.Record from MemoryStorage, or a re-decoded
// map[string]any from a JSON-backed variant) into the typed buffer shape.
func asBuffer(v any) (map[string][]record.Record, error) {
	switch t := v.(type) {
	case map[string][]record.Record:
		return t, nil
	case nil:
		return map[string][]record.Record{}, nil
	case map[string]any:
		out := make(map[string][]record.Record, len(t))
		for k, raw := range t {
			recs, err := asRecordSlice(raw)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = recs
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected buffer type %T", v)
	}
}

func asRecordSlice(v any) ([]record.Record, error) {
	switch t := v.(type) {
	case []record.Record:
		return t, nil
	case []any:
		out := make([]record.Record, 0, len(t))
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("element is %T, not a record", item)
			}
			out = append(out, record.Record(m))
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected record-slice type %T", v)
	}
}
