package model

import (
	"errors"
	"strings"
	"testing"
)

func TestModel_DefNames(t *testing.T) {
	m := &Model{Defs: map[string]*Node{"b": Int(), "a": String(), "c": Bool()}}
	got := strings.Join(m.DefNames(), ",")
	if got != "a,b,c" {
		t.Errorf("DefNames() = %s, want a,b,c", got)
	}
}

func TestModel_Resolve(t *testing.T) {
	m := &Model{Defs: map[string]*Node{
		"a":    Ref("b"),
		"b":    Int(),
		"loop": Ref("loop"),
	}}

	if got := m.Resolve(Ref("a")); got != m.Defs["b"] {
		t.Errorf("Resolve(a) = %v, want def b", got)
	}
	if got := m.Resolve(Ref("missing")); got != nil {
		t.Errorf("Resolve(missing) = %v, want nil", got)
	}
	if got := m.Resolve(Ref("loop")); got != nil {
		t.Errorf("Resolve(loop) = %v, want nil", got)
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindNull, "null"},
		{KindAlternation, "alternation"},
		{KindEnum, "enum"},
		{Kind(99), "Kind(99)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"$UUID", FormatUUID, true},
		{"DATE", FormatDate, true},
		{"date-time", FormatDateTime, true},
		{"$email", FormatEmail, true},
		{"uri", FormatURI, true},
		{"ipv4", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFormat(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPattern_Inline(t *testing.T) {
	tests := []struct {
		pattern Pattern
		want    string
		wantErr bool
	}{
		{Pattern{Regex: "^a$"}, "^a$", false},
		{Pattern{Regex: "^a$", Flags: "i"}, "(?i)^a$", false},
		{Pattern{Regex: "x", Flags: "sii"}, "(?is)x", false},
		{Pattern{Regex: "x", Flags: "g"}, "", true},
	}
	for _, tt := range tests {
		got, err := tt.pattern.Inline()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Inline() error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%s.Inline() = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestError(t *testing.T) {
	err := Errorf(CodeMalformedModel, "dangling reference %q", "x")
	if got := err.Error(); got != `malformed_model: dangling reference "x"` {
		t.Errorf("Error() = %s", got)
	}

	wrapped := errors.Join(errors.New("context"), err)
	if CodeOf(wrapped) != CodeMalformedModel {
		t.Errorf("CodeOf(wrapped) = %q", CodeOf(wrapped))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("CodeOf(plain) should be empty")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *Node
		want bool
	}{
		{"same scalar", Int(), Int(), true},
		{"kind differs", Int(), Float(), false},
		{"constraints", Int().Constrain(Ge, 0), Int().Constrain(Ge, 0), true},
		{"constraint limit", Int().Constrain(Ge, 0), Int().Constrain(Ge, 1), false},
		{"pattern", Regex("a", "i"), Regex("a", "i"), true},
		{"pattern flags", Regex("a", "i"), Regex("a", ""), false},
		{"doc ignored", String().Describe("x"), String(), true},
		{"enum numbers", Enum(1, "a"), Enum(1.0, "a"), true},
		{"enum order", Enum("a", "b"), Enum("b", "a"), false},
		{"object", Object(Prop("a", Int())), Object(Prop("a", Int())), true},
		{"object required", Object(Prop("a", Int())), Object(Opt("a", Int())), false},
		{"object closed", Object().Close(), Object(), false},
		{"refs by name", Array(Ref("x")), Array(Ref("x")), true},
		{"refs differ", Array(Ref("x")), Array(Ref("y")), false},
		{"alternatives", OneOf(Int(), Null()), OneOf(Int(), Null()), true},
		{"nil items", Array(nil), Array(Any()), false},
		{"nil", nil, Int(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}
