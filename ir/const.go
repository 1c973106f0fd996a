package ir

import (
	"fmt"
	"math"

	"github.com/broady/jsonmodel/model"
)

// Const is a JSON scalar constant: null, a boolean, an integer, a float or a
// string. The zero value is null.
type Const struct {
	value any
}

func NullConst() Const           { return Const{} }
func BoolConst(b bool) Const     { return Const{value: b} }
func IntConst(i int64) Const     { return Const{value: i} }
func FloatConst(f float64) Const { return Const{value: f} }
func StrConst(s string) Const    { return Const{value: s} }

// ConstOf converts a model scalar value. Integral float64 values stay floats:
// Key is what makes 1 and 1.0 compare equal.
func ConstOf(v any) (Const, error) {
	switch t := v.(type) {
	case nil:
		return NullConst(), nil
	case bool:
		return BoolConst(t), nil
	case int:
		return IntConst(int64(t)), nil
	case int64:
		return IntConst(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Const{}, fmt.Errorf("non-finite constant %v", t)
		}
		return FloatConst(t), nil
	case string:
		return StrConst(t), nil
	}
	return Const{}, fmt.Errorf("not a JSON scalar: %T", v)
}

// Value returns nil, bool, int64, float64 or string.
func (c Const) Value() any { return c.value }

// Type returns the JSON type of the constant.
func (c Const) Type() Type {
	switch c.value.(type) {
	case bool:
		return Bool
	case int64:
		return Int
	case float64:
		return Float
	case string:
		return String
	}
	return Null
}

// Key returns a comparable key; numbers compare by value.
func (c Const) Key() any {
	return model.ScalarKey(c.value)
}

func (c Const) String() string {
	if s, ok := c.value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	if c.value == nil {
		return "null"
	}
	return fmt.Sprint(c.value)
}

// ConstList is an ordered list of constants.
type ConstList []Const

// ConstListOf converts model scalar values, dropping duplicates by Key.
func ConstListOf(values []any) (ConstList, error) {
	out := make(ConstList, 0, len(values))
	seen := map[any]bool{}
	for _, v := range values {
		c, err := ConstOf(v)
		if err != nil {
			return nil, err
		}
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		out = append(out, c)
	}
	return out, nil
}
