package jsonmodel

import (
	"encoding/json"
	"math"
	"sort"
	"unicode/utf8"
)

// ExtendPath creates a new path segment for a property.
func ExtendPath(p *Path, name string) *Path {
	if p == nil {
		return nil
	}
	return &Path{parent: p, name: name, depth: p.depth + 1}
}

// ExtendPathIndex creates a new path segment for an array index.
func ExtendPathIndex(p *Path, index int) *Path {
	if p == nil {
		return nil
	}
	return &Path{parent: p, index: index, isIndex: true, depth: p.depth + 1}
}

// SelectPath returns p when condition holds and nil otherwise.
func SelectPath(p *Path, condition bool) *Path {
	if condition {
		return p
	}
	return nil
}

// Len returns the element count of an array or the property count of an object.
func Len(v any) int {
	switch t := v.(type) {
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	}
	return 0
}

// StrLen returns the length of s in characters, not bytes.
func StrLen(s string) int {
	return utf8.RuneCountInString(s)
}

// ObjectHasPropVal stores property prop of obj into dst and reports whether it
// exists. It reports false when obj is not an object.
func ObjectHasPropVal(obj any, prop string, dst *any) bool {
	m, ok := obj.(map[string]any)
	if !ok {
		return false
	}
	val, exists := m[prop]
	if exists {
		*dst = val
	}
	return exists
}

// HasProp reports whether obj is an object holding prop.
func HasProp(obj any, prop string) bool {
	m, ok := obj.(map[string]any)
	if !ok {
		return false
	}
	_, exists := m[prop]
	return exists
}

// Keys returns the property names of an object in lexical order, so that
// diagnostics do not depend on map iteration order.
func Keys(obj any) []string {
	m, _ := obj.(map[string]any)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// unkeyed is the dispatch key of arrays and objects; it never matches a constant.
type unkeyed struct{}

// Key returns the canonical dispatch-table key of a JSON value.
// Numbers compare by value: 1, 1.0 and json.Number("1e0") share the key int64(1).
func Key(v any) any {
	switch t := v.(type) {
	case nil, bool, string:
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, err := t.Float64()
		if err != nil {
			return unkeyed{}
		}
		return numberKey(f)
	case float64:
		return numberKey(t)
	case float32:
		return numberKey(float64(t))
	}
	if IsNumber(v) {
		if u, ok := v.(uint64); ok && u > math.MaxInt64 {
			return float64(u)
		}
		return AsInt(v)
	}
	return unkeyed{}
}

func numberKey(f float64) any {
	if isWholeInt64(f) {
		return int64(f)
	}
	return f
}

// Equal reports whether v equals the scalar constant c under Key semantics.
func Equal(v any, c any) bool {
	k := Key(v)
	if _, ok := k.(unkeyed); ok {
		return false
	}
	return k == Key(c)
}
