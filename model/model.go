// Package model defines the resolved JSON model that the compiler consumes.
//
// A Model is produced upstream by a schema front end (see package provider) and
// is read-only for the compiler: nodes are built once and never mutated while
// code is being generated.
package model

import (
	"fmt"
	"sort"
)

// Kind identifies what a Node validates.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindNumber
	KindString
	KindArray
	KindObject
	KindAlternation
	KindFormat
	KindReference
	// KindAny accepts every JSON value.
	KindAny
	// KindEnum accepts one of a finite set of JSON scalars.
	KindEnum
)

var kindNames = [...]string{
	KindNull:        "null",
	KindBool:        "bool",
	KindInt:         "int",
	KindFloat:       "float",
	KindNumber:      "number",
	KindString:      "string",
	KindArray:       "array",
	KindObject:      "object",
	KindAlternation: "alternation",
	KindFormat:      "format",
	KindReference:   "reference",
	KindAny:         "any",
	KindEnum:        "enum",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsScalar reports whether nodes of this kind validate a single scalar type.
func (k Kind) IsScalar() bool {
	switch k {
	case KindNull, KindBool, KindInt, KindFloat, KindNumber, KindString, KindFormat:
		return true
	}
	return false
}

// Op is a comparison operator of a Constraint.
type Op int

const (
	Eq Op = iota
	Ne
	Le
	Lt
	Ge
	Gt
)

var opSymbols = [...]string{Eq: "==", Ne: "!=", Le: "<=", Lt: "<", Ge: ">=", Gt: ">"}

// String returns the operator symbol, e.g. ">=".
func (o Op) String() string {
	if o >= 0 && int(o) < len(opSymbols) {
		return opSymbols[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Constraint bounds the measured quantity of a value.
//
// The quantity depends on the node kind: the numeric value for Int, Float and
// Number, the length in characters for String and Format, the element count for
// Array and the property count for Object.
type Constraint struct {
	Op    Op
	Limit float64
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s %g", c.Op, c.Limit)
}

// Pattern is a regular expression with its option flags.
//
// Regex uses RE2 syntax. Flags is a subset of "ims" (case-insensitive,
// multi-line, dot matches newline).
type Pattern struct {
	Regex string
	Flags string
}

func (p Pattern) String() string {
	return "/" + p.Regex + "/" + p.Flags
}

// Property is one named member of an object node.
type Property struct {
	// Name is the exact JSON property name.
	Name string

	// Node validates the property value.
	Node *Node

	// Required marks a mandatory property. A missing mandatory property is
	// reported at the path of the enclosing object.
	Required bool
}

// Node is a resolved schema fragment.
//
// Only the fields relevant to Kind are meaningful; Model.Validate rejects nodes
// that set fields of another kind.
type Node struct {
	Kind Kind

	// Doc is free text copied from the schema (title or description).
	Doc string

	// Constraints apply to Int, Float, Number, String, Format, Array and Object.
	Constraints []Constraint

	// Loose relaxes Int and Float: an Int node accepts any number exactly
	// representable as a 64-bit integer (1.0, 1e2), a Float node accepts integers.
	Loose bool

	// Pattern restricts String nodes.
	Pattern *Pattern

	// Items validates array elements after Prefix. Nil accepts any element.
	Items *Node

	// Prefix validates the leading array elements one by one (tuple head).
	// Arrays shorter than Prefix are rejected.
	Prefix []*Node

	// Properties lists the object members in declaration order.
	Properties []Property

	// Additional validates object properties not listed in Properties.
	// When nil, extra properties are accepted unless Closed is set.
	Additional *Node

	// Closed rejects object properties not listed in Properties.
	Closed bool

	// Alternatives are the branches of an Alternation; a value is accepted when
	// at least one branch accepts it.
	Alternatives []*Node

	// Discriminator optionally names the property whose constant value selects
	// the alternative. When empty, the optimizer may still detect one.
	Discriminator string

	// Format names the predefined string format of a Format node.
	Format Format

	// Values lists the accepted constants of an Enum node: nil, bool, float64,
	// int64, int or string.
	Values []any

	// Ref names the Model.Defs entry of a Reference node.
	Ref string
}

// Model is a complete resolved schema.
type Model struct {
	// Name identifies the model in generated comments and logs.
	Name string

	// Root validates the whole document.
	Root *Node

	// Defs holds named nodes reachable through Reference nodes. Every def
	// also becomes an entry point of the generated validator.
	Defs map[string]*Node
}

// DefNames returns the def names in sorted order.
func (m *Model) DefNames() []string {
	names := make([]string, 0, len(m.Defs))
	for name := range m.Defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve follows references until it reaches a non-reference node.
// It returns nil on a dangling or cyclic reference.
func (m *Model) Resolve(n *Node) *Node {
	seen := map[string]bool{}
	for n != nil && n.Kind == KindReference {
		if seen[n.Ref] {
			return nil
		}
		seen[n.Ref] = true
		n = m.Defs[n.Ref]
	}
	return n
}
