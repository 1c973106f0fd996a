package jsonmodel

import (
	"encoding/json"
	"math"
	"testing"
)

func TestIsInteger(t *testing.T) {
	tests := []struct {
		val   any
		loose bool
		want  bool
	}{
		{1.0, false, true},
		{-5.0, false, true},
		{1.5, false, false},
		{1.000001, true, false},
		{json.Number("42"), false, true},
		{json.Number("42.0"), false, true},
		{json.Number("42.0"), true, true},
		{json.Number("1e2"), false, true},
		{json.Number("-0"), false, true},
		{json.Number("4.5"), true, false},
		{json.Number("9223372036854775807"), false, false}, // rounds to 2^63
		{json.Number("-9223372036854775808"), false, true},
		{json.Number("1e400"), true, false},
		{9223372036854775808.0, true, false},
		{-9223372036854775808.0, true, true},
		{math.Inf(1), true, false},
		{math.NaN(), true, false},
		{7, false, true},
		{int64(math.MaxInt64), false, true},
		{uint64(math.MaxUint64), false, false},
		{"1", true, false},
		{true, true, false},
		{nil, true, false},
	}

	for _, tt := range tests {
		if got := IsInteger(tt.val, tt.loose); got != tt.want {
			t.Errorf("IsInteger(%#v, %v) = %v; want %v", tt.val, tt.loose, got, tt.want)
		}
	}
}

func TestIsFloat(t *testing.T) {
	tests := []struct {
		val   any
		loose bool
		want  bool
	}{
		{1.5, false, true},
		{json.Number("1.5"), false, true},
		{json.Number("2E3"), false, true},
		{json.Number("2"), false, true},
		{json.Number("2"), true, true},
		{3, false, true},
		{math.Inf(-1), false, false},
		{"1.5", true, false},
	}

	for _, tt := range tests {
		if got := IsFloat(tt.val, tt.loose); got != tt.want {
			t.Errorf("IsFloat(%#v, %v) = %v; want %v", tt.val, tt.loose, got, tt.want)
		}
	}
}

func TestIsNumber(t *testing.T) {
	tests := []struct {
		val  any
		want bool
	}{
		{1.0, true},
		{1.5, true},
		{-100.23, true},
		{json.Number("12"), true},
		{json.Number("1e400"), false},
		{math.NaN(), false},
		{int64(3), true},
		{"1.0", false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := IsNumber(tt.val); got != tt.want {
			t.Errorf("IsNumber(%v) = %v; want %v", tt.val, got, tt.want)
		}
	}
}

func TestKindPredicates(t *testing.T) {
	if !IsString("hello") || IsString(123) {
		t.Error("IsString mismatch")
	}
	if !IsBool(false) || IsBool("true") {
		t.Error("IsBool mismatch")
	}
	if !IsArray([]any{1.0}) || IsArray(map[string]any{}) {
		t.Error("IsArray mismatch")
	}
	if !IsObject(map[string]any{"k": "v"}) || IsObject([]any{}) {
		t.Error("IsObject mismatch")
	}
	if !IsNull(nil) || IsNull(0.0) {
		t.Error("IsNull mismatch")
	}
	for _, v := range []any{nil, true, "s", 1.5, json.Number("3")} {
		if !IsScalar(v) {
			t.Errorf("IsScalar(%#v) = false", v)
		}
	}
	for _, v := range []any{[]any{}, map[string]any{}} {
		if IsScalar(v) {
			t.Errorf("IsScalar(%#v) = true", v)
		}
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		val  any
		want int64
	}{
		{42.0, 42},
		{10, 10},
		{json.Number("-7"), -7},
		{json.Number("8.0"), 8},
		{uint8(3), 3},
	}
	for _, tt := range tests {
		if got := AsInt(tt.val); got != tt.want {
			t.Errorf("AsInt(%#v) = %d; want %d", tt.val, got, tt.want)
		}
	}
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		val  any
		want float64
	}{
		{123.456, 123.456},
		{json.Number("2.5"), 2.5},
		{int32(4), 4},
	}
	for _, tt := range tests {
		if got := AsFloat(tt.val); got != tt.want {
			t.Errorf("AsFloat(%#v) = %v; want %v", tt.val, got, tt.want)
		}
	}
	if !math.IsNaN(AsFloat("x")) {
		t.Error("AsFloat of a string should be NaN")
	}
}

func TestAsContainers(t *testing.T) {
	arr := AsArray([]any{1.0, 2.0})
	if len(arr) != 2 || arr[0] != 1.0 {
		t.Errorf("AsArray mismatch: %v", arr)
	}
	obj := AsObject(map[string]any{"foo": "bar"})
	if obj["foo"] != "bar" {
		t.Errorf("AsObject mismatch: %v", obj)
	}
	if AsString("s") != "s" || !AsBool(true) {
		t.Error("scalar casts mismatch")
	}
}
