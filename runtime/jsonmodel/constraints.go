package jsonmodel

import (
	"unicode/utf8"
)

type Op int

const (
	Eq Op = iota // ==
	Ne           // !=
	Le           // <=
	Lt           // <
	Ge           // >=
	Gt           // >
)

// CheckConstraint applies a constraint (op, limit) to a value v.
// Numbers are compared by value, strings by character count, arrays by
// element count and objects by property count.
func CheckConstraint(v any, op Op, limit float64) bool {
	var val float64

	switch t := v.(type) {
	case string:
		val = float64(utf8.RuneCountInString(t))
	case []any:
		val = float64(len(t))
	case map[string]any:
		val = float64(len(t))
	default:
		if !IsNumber(v) {
			// Constraints don't apply to bool/null
			return false
		}
		val = AsFloat(v)
	}

	switch op {
	case Eq:
		return val == limit
	case Ne:
		return val != limit
	case Le:
		return val <= limit
	case Lt:
		return val < limit
	case Ge:
		return val >= limit
	case Gt:
		return val > limit
	}
	return false
}
