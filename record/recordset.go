package record

import (
	"sort"
	"strconv"
)

// Model is the subset of model.Model that RecordSet needs, kept local to
// avoid an import cycle between record and model (model.Model is built out
// of Records).
type Model interface {
	ValidateRecord(r Record) (Record, error)
}

// RecordSet is an ordered, id_-unique collection of Records, optionally
// bound to a Model. The zero value is not usable; construct with New.
type RecordSet struct {
	model Model
	order []string // id_ values, in current display order
	byID  map[string]Record
}

// New constructs a RecordSet, optionally bound to model, and applies an
// initial Update if records is non-empty.
func New(model Model, records ...Record) (*RecordSet, error) {
	rs := &RecordSet{
		model: model,
		byID:  make(map[string]Record),
	}
	if len(records) > 0 {
		if err := rs.Update(records, true); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// keyFor returns the identity a record is indexed by: id_ if present,
// otherwise a synthetic key derived from t (per spec.md §3 "indexed by id_,
// falling back to t if id_ absent").
func keyFor(r Record) (key string, usedFallback bool) {
	if id := r.ID(); id != "" {
		return id, false
	}
	return "t:" + strconv.FormatInt(r.T(), 10), true
}

// Update accepts one or more records, validating/coercing each against the
// bound Model (if any) or else filling in defaults (id_/t), and replaces
// any existing entry with the same identity. When sort is true the set is
// reordered ascending by t after all insertions.
func (rs *RecordSet) Update(records []Record, sort bool) error {
	for _, in := range records {
		rec := in
		var err error
		if rs.model != nil {
			rec, err = rs.model.ValidateRecord(rec)
			if err != nil {
				return err
			}
		} else {
			rec = withDefaults(rec)
		}

		key, _ := keyFor(rec)
		if _, exists := rs.byID[key]; !exists {
			rs.order = append(rs.order, key)
		}
		rs.byID[key] = rec
	}
	if sort {
		rs.Sort()
	}
	return nil
}

// Sort reorders the set ascending by t. Stable, so records sharing a t
// value keep their relative insertion order.
func (rs *RecordSet) Sort() {
	sort.SliceStable(rs.order, func(i, j int) bool {
		return rs.byID[rs.order[i]].T() < rs.byID[rs.order[j]].T()
	})
}

// Records returns the ordered sequence of records in current ordering. The
// returned slice is a fresh copy; mutating it does not affect the set.
func (rs *RecordSet) Records() []Record {
	out := make([]Record, len(rs.order))
	for i, k := range rs.order {
		out[i] = rs.byID[k]
	}
	return out
}

// Len returns the number of distinct records in the set.
func (rs *RecordSet) Len() int { return len(rs.order) }

// At returns the record at position i in current ordering.
func (rs *RecordSet) At(i int) Record { return rs.byID[rs.order[i]] }

// GetByID returns the record with the given id_, or def if absent.
func (rs *RecordSet) GetByID(id string, def Record) Record {
	if r, ok := rs.byID[id]; ok {
		return r
	}
	return def
}

// GetByT returns the first record (in current ordering) with the given t,
// or def if none match. Present for records keyed without an id_.
func (rs *RecordSet) GetByT(t int64, def Record) Record {
	for _, k := range rs.order {
		if r := rs.byID[k]; r.T() == t {
			return r
		}
	}
	return def
}

// Filter returns a new RecordSet containing only records for which pred
// returns true, preserving current ordering and model binding.
func (rs *RecordSet) Filter(pred func(Record) bool) *RecordSet {
	out := &RecordSet{model: rs.model, byID: make(map[string]Record)}
	for _, k := range rs.order {
		r := rs.byID[k]
		if pred(r) {
			out.order = append(out.order, k)
			out.byID[k] = r
		}
	}
	return out
}

// Clone returns a deep-enough copy of rs: independent ordering/index, but
// Records themselves are shared (Records are treated as immutable once
// inserted, per §3 "never mutated in place").
func (rs *RecordSet) Clone() *RecordSet {
	out := &RecordSet{
		model: rs.model,
		order: append([]string(nil), rs.order...),
		byID:  make(map[string]Record, len(rs.byID)),
	}
	for k, v := range rs.byID {
		out.byID[k] = v
	}
	return out
}
