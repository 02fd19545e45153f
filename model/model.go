// Package model implements the declarative schema layer: a Model binds
// field names to value types plus optionality and defaults, and validates/
// canonicalizes Records against that binding.
//
// The required-field and cross-dependency checking style here is adapted
// from internal/domain/channel/model.go's hand-written Validate method in
// the teacher repo, generalized from one hardcoded struct to a declarative
// field table so any connection's models can be expressed the same way.
package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alephcore/engine/erralph"
	"github.com/alephcore/engine/record"
)

// Kind is a declared field's value type.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Field declares one field of a Model.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Default  any
}

// Model is a declarative schema: a set of fields plus their constraints.
// The zero value is an empty schema (no fields), which validates any record
// trivially (nothing required, nothing to coerce).
type Model struct {
	Name   string
	Fields []Field

	// Table, if non-nil, is this model's relational-table derivation (adds
	// deleted_, a primary key on id_, an index on t). See AsTableSchema.
	table *TableSchema

	// deps holds cross-field dependency rules set via WithDependencies.
	deps DependencyRules
}

// New constructs a Model from a field list.
func New(name string, fields ...Field) *Model {
	return &Model{Name: name, Fields: fields}
}

// ValidateRecord validates r against m, coercing field values to their
// declared kind and filling in defaults for missing optional fields.
// Required fields that are absent, or present fields whose value cannot be
// coerced, fail with an error wrapping erralph.ErrInvalidModel. The reserved
// id_/t fields are always filled in with defaults if absent, same as the
// unmodeled path.
func (m *Model) ValidateRecord(r record.Record) (record.Record, error) {
	return m.validate(r, false)
}

// ValidateSubrecord validates r against m with every field relaxed to
// optional — used for partial updates and report-by-exception diffs, where
// an input legitimately carries only a subset of the model's fields.
func (m *Model) ValidateSubrecord(r record.Record) (record.Record, error) {
	return m.validate(r, true)
}

func (m *Model) validate(r record.Record, relaxRequired bool) (record.Record, error) {
	out := make(record.Record, len(r))
	for k, v := range r {
		out[k] = v
	}

	var missing []string
	for _, f := range m.Fields {
		v, present := out[f.Name]
		if !present {
			if f.Default != nil {
				out[f.Name] = f.Default
				continue
			}
			if f.Required && !relaxRequired {
				missing = append(missing, f.Name)
			}
			continue
		}
		coerced, err := coerce(v, f.Kind)
		if err != nil {
			return nil, invalidModel(m.Name, fmt.Sprintf("field %q: %s", f.Name, err))
		}
		out[f.Name] = coerced
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, invalidModel(m.Name, fmt.Sprintf("missing required fields [%s]", strings.Join(missing, ", ")))
	}

	if !relaxRequired {
		if err := m.checkDependencies(out); err != nil {
			return nil, invalidModel(m.Name, err.Error())
		}
	}

	if _, ok := out[record.FieldID]; !ok {
		out[record.FieldID] = newID()
	}
	if _, ok := out[record.FieldT]; !ok {
		out[record.FieldT] = nowMillis()
	}

	return out, nil
}

func invalidModel(modelName, msg string) error {
	return fmt.Errorf("model %q: %w: %s", modelName, erralph.ErrInvalidModel, msg)
}

// coerce attempts to convert v to the declared kind, matching the source's
// permissive-but-not-silent coercion: numeric strings convert to numbers,
// numbers convert to strings, but a non-numeric string can't become a
// number.
func coerce(v any, k Kind) (any, error) {
	switch k {
	case KindString:
		switch t := v.(type) {
		case string:
			return t, nil
		case fmt.Stringer:
			return t.String(), nil
		default:
			return fmt.Sprintf("%v", t), nil
		}
	case KindInt:
		switch t := v.(type) {
		case int:
			return int64(t), nil
		case int64:
			return t, nil
		case float64:
			return int64(t), nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to int", t)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("cannot coerce %T to int", v)
		}
	case KindFloat:
		switch t := v.(type) {
		case float64:
			return t, nil
		case int:
			return float64(t), nil
		case int64:
			return float64(t), nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to float", t)
			}
			return n, nil
		default:
			return nil, fmt.Errorf("cannot coerce %T to float", v)
		}
	case KindBool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(t))
			if err != nil {
				return nil, fmt.Errorf("cannot coerce %q to bool", t)
			}
			return b, nil
		default:
			return nil, fmt.Errorf("cannot coerce %T to bool", v)
		}
	default:
		return v, nil
	}
}
