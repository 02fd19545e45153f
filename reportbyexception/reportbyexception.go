// Package reportbyexception implements §4.3: suppressing writes of fields
// whose value has not changed since the last observed state for the same
// id_.
package reportbyexception

import (
	"context"
	"fmt"
	"sync"

	"github.com/alephcore/engine/localstorage"
	"github.com/alephcore/engine/record"
)

// ReportByException holds, per key, a mapping id_ → last-seen-record in a
// shared LocalStorage under REPORT_BY_EXCEPTION_<key> (spec.md §6.4).
type ReportByException struct {
	storage localstorage.Storage

	// mu serializes Next calls against the same instance; see
	// storeforward.StoreAndForward's mu for the identical rationale.
	mu sync.Mutex
}

// New constructs a ReportByException backed by storage.
func New(storage localstorage.Storage) *ReportByException {
	return &ReportByException{storage: storage}
}

func storageKey(key string) string { return "REPORT_BY_EXCEPTION_" + key }

// Next diffs records against the last-seen state for key, returning only
// the fields that changed (plus id_) for each record with a prior
// observation, and the full record for any record observed for the first
// time. Records that would be empty apart from id_/t are dropped from the
// result. The updated state is persisted before Next returns.
//
// A record with no id_ has no stable identity to diff against, so it is
// passed through unchanged on every call and never persisted into the
// state map — the decision recorded in SPEC_FULL.md for the source's
// ambiguous id_-absent behavior.
func (rbe *ReportByException) Next(ctx context.Context, key string, records []record.Record) ([]record.Record, error) {
	rbe.mu.Lock()
	defer rbe.mu.Unlock()

	state, err := rbe.loadStateLocked(ctx, key)
	if err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, len(records))
	changed := false

	for _, r := range records {
		id := r.ID()
		if id == "" {
			out = append(out, r)
			continue
		}

		prev, seen := state[id]
		var residual record.Record
		if !seen {
			residual = r.Clone()
		} else {
			residual = diff(prev, r)
		}

		state[id] = merge(prev, r)
		changed = true

		if isEmptyResidual(residual) {
			continue
		}
		out = append(out, residual)
	}

	if changed {
		if err := rbe.saveStateLocked(ctx, key, state); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// diff returns {id_} ∪ {(f,v) ∈ r : f ∉ prev ∨ prev[f] ≠ v}.
func diff(prev, r record.Record) record.Record {
	out := record.Record{record.FieldID: r.ID()}
	for f, v := range r {
		if f == record.FieldID {
			continue
		}
		if pv, ok := prev[f]; !ok || !valuesEqual(pv, v) {
			out[f] = v
		}
	}
	return out
}

// merge shallow-overwrites prev with r's fields.
func merge(prev, r record.Record) record.Record {
	out := prev.Clone()
	if out == nil {
		out = make(record.Record, len(r))
	}
	for f, v := range r {
		out[f] = v
	}
	return out
}

// isEmptyResidual reports whether r carries nothing but id_/t.
func isEmptyResidual(r record.Record) bool {
	for f := range r {
		if f != record.FieldID && f != record.FieldT {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
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

func (rbe *ReportByException) loadStateLocked(ctx context.Context, key string) (map[string]record.Record, error) {
	v, err := rbe.storage.Get(ctx, storageKey(key), map[string]record.Record{})
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return asState(v)
}

func (rbe *ReportByException) saveStateLocked(ctx context.Context, key string, state map[string]record.Record) error {
	if err := rbe.storage.Set(ctx, storageKey(key), state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func asState(v any) (map[string]record.Record, error) {
	switch t := v.(type) {
	case map[string]record.Record:
		return t, nil
	case nil:
		return map[string]record.Record{}, nil
	case map[string]any:
		out := make(map[string]record.Record, len(t))
		for id, raw := range t {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("id %q: element is %T, not a record", id, raw)
			}
			out[id] = record.Record(m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected state type %T", v)
	}
}
