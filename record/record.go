// Package record defines the canonical in-memory data container the whole
// engine exchanges: an unordered field map (Record) and an ordered,
// id-unique collection of them (RecordSet).
package record

import (
	"github.com/google/uuid"
	"github.com/alephcore/engine/timex"
)

// Reserved field names, per the data model.
const (
	FieldID      = "id_"
	FieldT       = "t"
	FieldDeleted = "deleted_"
)

// Record is an unordered mapping from field name to value. Values are
// whatever encoding/json can already carry: string, float64, int, bool,
// nil, map[string]any, []any — the engine never restricts Record to a
// closed Value type, since Go's empty interface plus JSON numbers already
// covers the spec's string/int/float/bool/null domain.
type Record map[string]any

// Clone returns a shallow copy of r. Record is a map, so assignment alone
// aliases the same backing storage; call Clone before mutating a Record you
// don't own.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the record's id_ field as a string, or "" if absent or not a
// string.
func (r Record) ID() string {
	v, _ := r[FieldID].(string)
	return v
}

// T returns the record's t field as milliseconds since epoch, or 0 if
// absent or not numeric.
func (r Record) T() int64 {
	switch v := r[FieldT].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Deleted reports whether the record is soft-deleted.
func (r Record) Deleted() bool {
	v, _ := r[FieldDeleted].(bool)
	return v
}

// withDefaults returns r with id_ and t filled in if absent, per §4.1
// "fill in missing t ... and id_". The input is never mutated.
func withDefaults(r Record) Record {
	_, hasID := r[FieldID]
	_, hasT := r[FieldT]
	if hasID && hasT {
		return r
	}
	out := r.Clone()
	if !hasID {
		out[FieldID] = uuid.NewString()
	}
	if !hasT {
		out[FieldT] = timex.NowMillis()
	}
	return out
}
