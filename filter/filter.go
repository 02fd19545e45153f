// Package filter implements the small filter grammar of spec.md §6.2,
// consumed by relational/document backends for pushdown and by any backend
// without native filter support (e.g. the in-memory testing backend) via
// Matches.
package filter

import (
	"strconv"
	"strings"

	"github.com/alephcore/engine/record"
)

// Filter is a field → condition mapping. All conditions combine with
// logical AND.
type Filter map[string]any

// Op is a comparison operator recognized in a condition string.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpGe Op = ">="
	OpLe Op = "<="
	OpGt Op = ">"
	OpLt Op = "<"
)

// orderedPrefixes lists comparison prefixes longest-first so ">=" is not
// mistakenly parsed as ">" with a leading "=".
var orderedPrefixes = []Op{OpGe, OpLe, OpEq, OpNe, OpGt, OpLt}

// Matches reports whether r satisfies every condition in f.
func Matches(f Filter, r record.Record) bool {
	for field, cond := range f {
		if !matchesOne(r[field], cond) {
			return false
		}
	}
	return true
}

func matchesOne(value, cond any) bool {
	switch c := cond.(type) {
	case []any:
		return memberOf(value, c)
	case float64, int, int64:
		return numEquals(value, c)
	case string:
		if op, operand, ok := parseComparison(c); ok {
			return compare(value, op, operand)
		}
		return equalsString(value, c)
	default:
		return equalsString(value, toString(c))
	}
}

func memberOf(value any, values []any) bool {
	for _, v := range values {
		if valuesEqual(value, v) {
			return true
		}
	}
	return false
}

func parseComparison(s string) (Op, string, bool) {
	for _, op := range orderedPrefixes {
		if strings.HasPrefix(s, string(op)) {
			return op, strings.TrimSpace(s[len(op):]), true
		}
	}
	return "", "", false
}

func compare(value any, op Op, operand string) bool {
	lf, lok := asFloat(value)
	rf, rerr := strconv.ParseFloat(operand, 64)
	if lok && rerr == nil {
		switch op {
		case OpEq:
			return lf == rf
		case OpNe:
			return lf != rf
		case OpGe:
			return lf >= rf
		case OpLe:
			return lf <= rf
		case OpGt:
			return lf > rf
		case OpLt:
			return lf < rf
		}
	}
	ls := toString(value)
	switch op {
	case OpEq:
		return ls == operand
	case OpNe:
		return ls != operand
	case OpGe:
		return ls >= operand
	case OpLe:
		return ls <= operand
	case OpGt:
		return ls > operand
	case OpLt:
		return ls < operand
	}
	return false
}

func numEquals(value, cond any) bool {
	lf, lok := asFloat(value)
	rf, rok := asFloat(cond)
	return lok && rok && lf == rf
}

func equalsString(value any, s string) bool {
	return toString(value) == s
}

func valuesEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	return toString(a) == toString(b)
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

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return strings.TrimSpace(strconvFormat(t))
	}
}

func strconvFormat(v any) string {
	switch t := v.(type) {
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
