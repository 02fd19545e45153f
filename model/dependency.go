package model

import (
	"fmt"
	"sort"
	"strings"
)

// DependencyRules declares "if field X is set, fields Y... must also be
// set" constraints, generalized from the teacher's hand-written
// crossDependencyCheck/isSet pair (internal/domain/channel/model.go), which
// hardcoded the same DFS-over-a-map pattern for one struct. Keys and values
// are field names from m.Fields; "set" is decided by isSet on the record
// after coercion.
type DependencyRules map[string][]string

// WithDependencies attaches cross-field dependency rules to m and returns m
// for chaining.
func (m *Model) WithDependencies(rules DependencyRules) *Model {
	m.deps = rules
	return m
}

// checkDependencies walks deps transitively from every field set in r,
// collecting any dependency that is not itself set. Mirrors the teacher's
// DFS-with-missing-set accumulation exactly, generalized to an arbitrary
// field table instead of five hardcoded field names.
func (m *Model) checkDependencies(r map[string]any) error {
	if len(m.deps) == 0 {
		return nil
	}
	missing := map[string]struct{}{}

	var visit func(string)
	visit = func(field string) {
		for _, dep := range m.deps[field] {
			if !isSet(r, dep) {
				missing[dep] = struct{}{}
			}
			visit(dep)
		}
	}

	for field := range m.deps {
		if isSet(r, field) {
			visit(field)
		}
	}

	if len(missing) == 0 {
		return nil
	}
	keys := make([]string, 0, len(missing))
	for k := range missing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("missing (cross-dependency) required fields [%s]", strings.Join(keys, ", "))
}

// isSet reports whether field is present in r with a non-nil value that is
// not the empty string and not false. Any other value, including a numeric
// zero, counts as set.
func isSet(r map[string]any, field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	default:
		return true
	}
}
