package jsonmodel

import (
	"encoding/json"
	"math"
)

// int64Bound is 2^63, the smallest float64 above the int64 range.
const int64Bound = 9223372036854775808.0

// --- Type Checkers ---

// IsNull reports whether v is the JSON null.
func IsNull(v any) bool {
	return v == nil
}

func IsBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// IsInteger reports whether v is a JSON integer: a number whose
// double-precision value is whole and within the int64 range. The literal
// form does not matter, so 1.0 and 1e2 are integers, and loose has no effect.
// Every backend applies this rule, which is the one JavaScript can implement.
func IsInteger(v any, loose bool) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return true
	case uint:
		return uint64(n) <= math.MaxInt64
	case uint64:
		return n <= math.MaxInt64
	}
	f, ok := floatValue(v)
	return ok && isWholeInt64(f)
}

// IsFloat reports whether v is a JSON number. A float is judged by value
// like an integer, and every number has a float value, so loose has no effect.
func IsFloat(v any, loose bool) bool {
	return IsNumber(v)
}

// IsNumber reports whether v is a finite JSON number.
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	_, ok := floatValue(v)
	return ok
}

// floatValue returns the finite double-precision value of a float or a
// json.Number. Literals beyond the float64 range are not numbers.
func floatValue(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	return f, !math.IsNaN(f) && !math.IsInf(f, 0)
}

func IsString(v any) bool {
	_, ok := v.(string)
	return ok
}

func IsArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

func IsObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// IsScalar reports whether v is null, a boolean, a number or a string.
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, bool, string, json.Number:
		return true
	}
	return IsNumber(v)
}

func isWholeInt64(f float64) bool {
	return f == math.Trunc(f) && f >= -int64Bound && f < int64Bound
}

// --- Type Converters (Casters) ---

// AsBool returns the boolean held by v. v must satisfy IsBool.
func AsBool(v any) bool {
	return v.(bool)
}

// AsInt returns the integer value of v, truncating floats.
func AsInt(v any) int64 {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		f, _ := n.Float64()
		return int64(f)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	}
	return 0
}

// AsFloat returns the numeric value of v as a float64.
func AsFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	case float32:
		return float64(n)
	case uint64:
		return float64(n)
	case uint:
		return float64(n)
	}
	if IsNumber(v) {
		return float64(AsInt(v))
	}
	return math.NaN()
}

func AsString(v any) string {
	return v.(string)
}

func AsArray(v any) []any {
	return v.([]any)
}

func AsObject(v any) map[string]any {
	return v.(map[string]any)
}
