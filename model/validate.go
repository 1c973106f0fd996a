package model

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Validate checks the model for structural issues.
// Returns all validation errors found (not just the first), each an *Error
// with code CodeMalformedModel.
func (m *Model) Validate() []error {
	v := &validator{model: m, seen: map[*Node]bool{}}
	if m.Root == nil {
		v.fail("$", "model has no root node")
	} else {
		v.node("$", m.Root)
	}
	for _, name := range m.DefNames() {
		def := m.Defs[name]
		if def == nil {
			v.fail("$defs."+name, "nil definition")
			continue
		}
		v.node("$defs."+name, def)
	}
	v.cycles()

	errs := make([]error, len(v.errs))
	for i, e := range v.errs {
		errs[i] = e
	}
	return errs
}

type validator struct {
	model *Model
	seen  map[*Node]bool
	errs  []*Error
}

func (v *validator) fail(loc, format string, args ...any) {
	args = append([]any{loc}, args...)
	v.errs = append(v.errs, Errorf(CodeMalformedModel, "%s: "+format, args...))
}

func (v *validator) node(loc string, n *Node) {
	if n == nil {
		v.fail(loc, "nil node")
		return
	}
	// Shared subtrees are checked once.
	if v.seen[n] {
		return
	}
	v.seen[n] = true

	if n.Kind < KindNull || n.Kind > KindEnum {
		v.fail(loc, "unknown kind %d", int(n.Kind))
		return
	}
	v.fields(loc, n)

	for i, c := range n.Constraints {
		if c.Op < Eq || c.Op > Gt {
			v.fail(loc, "constraint %d: unknown operator %d", i, int(c.Op))
		}
		if math.IsNaN(c.Limit) {
			v.fail(loc, "constraint %d: limit is NaN", i)
		}
	}

	switch n.Kind {
	case KindString:
		if n.Pattern != nil {
			if _, err := n.Pattern.Compile(); err != nil {
				v.fail(loc, "%v", err)
			}
		}
	case KindFormat:
		if !n.Format.Valid() {
			v.fail(loc, "unknown format %q", string(n.Format))
		}
	case KindEnum:
		if len(n.Values) == 0 {
			v.fail(loc, "enum without values")
		}
		for i, val := range n.Values {
			if !IsScalarValue(val) {
				v.fail(loc, "enum value %d is not a JSON scalar: %T", i, val)
			}
		}
	case KindReference:
		if _, ok := v.model.Defs[n.Ref]; !ok {
			v.fail(loc, "dangling reference %q", n.Ref)
		}
	case KindArray:
		for i, p := range n.Prefix {
			v.node(loc+"["+strconv.Itoa(i)+"]", p)
		}
		if n.Items != nil {
			v.node(loc+"[*]", n.Items)
		}
	case KindObject:
		if n.Closed && n.Additional != nil {
			v.fail(loc, "closed object with additional properties node")
		}
		names := map[string]bool{}
		for _, p := range n.Properties {
			if names[p.Name] {
				v.fail(loc, "duplicate property %q", p.Name)
			}
			names[p.Name] = true
			v.node(loc+"."+p.Name, p.Node)
		}
		if n.Additional != nil {
			v.node(loc+".*", n.Additional)
		}
	case KindAlternation:
		if len(n.Alternatives) == 0 {
			v.fail(loc, "alternation without branches")
		}
		for i, alt := range n.Alternatives {
			v.node(loc+"|"+strconv.Itoa(i), alt)
		}
	}
}

// fields rejects fields that do not belong to the node kind.
func (v *validator) fields(loc string, n *Node) {
	bad := func(field string) {
		v.fail(loc, "%s set on a %s node", field, n.Kind)
	}
	if len(n.Constraints) > 0 {
		switch n.Kind {
		case KindInt, KindFloat, KindNumber, KindString, KindFormat, KindArray, KindObject:
		default:
			bad("Constraints")
		}
	}
	if n.Loose && n.Kind != KindInt && n.Kind != KindFloat {
		bad("Loose")
	}
	if n.Pattern != nil && n.Kind != KindString {
		bad("Pattern")
	}
	if n.Kind != KindArray && (n.Items != nil || len(n.Prefix) > 0) {
		bad("Items")
	}
	if n.Kind != KindObject && (len(n.Properties) > 0 || n.Additional != nil || n.Closed) {
		bad("Properties")
	}
	if n.Kind != KindAlternation && (len(n.Alternatives) > 0 || n.Discriminator != "") {
		bad("Alternatives")
	}
	if n.Format != "" && n.Kind != KindFormat {
		bad("Format")
	}
	if len(n.Values) > 0 && n.Kind != KindEnum {
		bad("Values")
	}
	if n.Ref != "" && n.Kind != KindReference {
		bad("Ref")
	}
}

// cycles reports definitions that reach themselves without descending into an
// array or an object, which would recurse forever on any input.
func (v *validator) cycles() {
	const (
		unvisited = iota
		active
		done
	)
	state := map[string]int{}
	var visit func(name string) bool
	var walk func(n *Node) bool

	walk = func(n *Node) bool {
		if n == nil {
			return false
		}
		switch n.Kind {
		case KindReference:
			if _, ok := v.model.Defs[n.Ref]; ok {
				return visit(n.Ref)
			}
		case KindAlternation:
			for _, alt := range n.Alternatives {
				if walk(alt) {
					return true
				}
			}
		}
		return false
	}
	visit = func(name string) bool {
		switch state[name] {
		case active:
			return true
		case done:
			return false
		}
		state[name] = active
		cyclic := walk(v.model.Defs[name])
		state[name] = done
		return cyclic
	}

	for _, name := range v.model.DefNames() {
		if state[name] != unvisited {
			continue
		}
		if visit(name) {
			v.fail("$defs."+name, "reference cycle does not cross an array or an object")
		}
	}
}

// Compile checks the flags and compiles the pattern with Go's regexp package.
func (p Pattern) Compile() (*regexp.Regexp, error) {
	expr, err := p.Inline()
	if err != nil {
		return nil, err
	}
	return regexp.Compile(expr)
}

// Inline returns the regex with its flags folded into a leading "(?ims)" group.
func (p Pattern) Inline() (string, error) {
	flags, err := NormalizeFlags(p.Flags)
	if err != nil {
		return "", err
	}
	if flags == "" {
		return p.Regex, nil
	}
	return "(?" + flags + ")" + p.Regex, nil
}

// NormalizeFlags validates regex flags and returns them deduplicated in
// "ims" order. Any flag other than i, m and s is an error.
func NormalizeFlags(flags string) (string, error) {
	var b strings.Builder
	for _, f := range "ims" {
		if strings.ContainsRune(flags, f) {
			b.WriteRune(f)
		}
	}
	for _, f := range flags {
		if !strings.ContainsRune("ims", f) {
			return "", Errorf(CodeMalformedModel, "unsupported regex flag %q", f)
		}
	}
	return b.String(), nil
}

// IsScalarValue reports whether v can be an Enum constant.
func IsScalarValue(v any) bool {
	switch t := v.(type) {
	case nil, bool, string, int, int64:
		return true
	case float64:
		return !math.IsNaN(t) && !math.IsInf(t, 0)
	}
	return false
}

// ScalarKey returns the comparison key of a scalar value: whole numbers within
// the int64 range become int64 so that 1 and 1.0 compare equal.
func ScalarKey(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case float64:
		if t == math.Trunc(t) && t >= -(1<<63) && t < 1<<63 {
			return int64(t)
		}
	}
	return v
}
