// Package ir defines the code fragments exchanged between the compiler and a
// target language backend.
//
// Every fragment is plain text in the target language, typed by what it
// evaluates to. The compiler never inspects the text of a fragment: it only
// passes fragments from one backend operation to another.
package ir

import "github.com/broady/jsonmodel/model"

// Expr is an expression of any type.
type Expr string

// BoolExpr evaluates to a target-language boolean.
type BoolExpr string

// IntExpr evaluates to a target-language integer.
type IntExpr string

// FloatExpr evaluates to a target-language floating point number.
type FloatExpr string

// StrExpr evaluates to a target-language string.
type StrExpr string

// JSONExpr evaluates to a decoded JSON value of unknown type.
type JSONExpr string

// PathExpr evaluates to a path, or to the null path when tracking is off.
type PathExpr string

// Var is a named binding local to one generated function.
type Var string

// The parameters shared by every generated checker.
const (
	Val  Var = "val"
	Path Var = "path"
)

func (v Var) JSON() JSONExpr { return JSONExpr(v) }
func (v Var) Bool() BoolExpr { return BoolExpr(v) }
func (v Var) Int() IntExpr   { return IntExpr(v) }
func (v Var) Str() StrExpr   { return StrExpr(v) }
func (v Var) Path() PathExpr { return PathExpr(v) }
func (v Var) Expr() Expr     { return Expr(v) }

// Type is the closed set of JSON kinds a value can be tested for.
type Type int

const (
	Null Type = iota
	Bool
	Int
	Float
	Number
	String
	Array
	Object
)

var typeNames = [...]string{"null", "bool", "int", "float", "number", "string", "array", "object"}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(?)"
}

// TypeOf maps a scalar or container model kind to its Type.
// It reports false for kinds that have no single JSON type.
func TypeOf(k model.Kind) (Type, bool) {
	switch k {
	case model.KindNull:
		return Null, true
	case model.KindBool:
		return Bool, true
	case model.KindInt:
		return Int, true
	case model.KindFloat:
		return Float, true
	case model.KindNumber:
		return Number, true
	case model.KindString, model.KindFormat:
		return String, true
	case model.KindArray:
		return Array, true
	case model.KindObject:
		return Object, true
	}
	return 0, false
}

// VarType is the declared type of a local variable.
type VarType int

const (
	// VarJSON holds a decoded JSON value.
	VarJSON VarType = iota
	VarBool
	VarInt
	VarPath
	// VarChecker holds a reference to a checker function.
	VarChecker
)

// Op is a comparison operator.
type Op = model.Op

// Block is an ordered sequence of statement lines.
// Nested blocks are indented by the backend that nests them.
type Block []string

// Concat joins blocks in order.
func Concat(blocks ...Block) Block {
	n := 0
	for _, b := range blocks {
		n += len(b)
	}
	out := make(Block, 0, n)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}

// Indent prefixes every non-empty line of b.
func (b Block) Indent(prefix string) Block {
	out := make(Block, len(b))
	for i, line := range b {
		if line == "" {
			continue
		}
		out[i] = prefix + line
	}
	return out
}

// Hint is an advisory branch likelihood. Backends may use it to order or
// annotate branches; it never changes which branch is taken.
type Hint int

const (
	HintNone Hint = iota
	HintLikely
	HintUnlikely
)

// Branch is one arm of a multi-way conditional.
type Branch struct {
	Cond BoolExpr
	Hint Hint
	Body Block
}

// PropEntry binds a property name to a checker function name.
type PropEntry struct {
	Name string
	Fun  string
}

// PropMap is an ordered property dispatch table.
type PropMap []PropEntry

// ConstEntry binds a scalar constant to a checker function name.
type ConstEntry struct {
	Const Const
	Fun   string
}

// ConstMap is an ordered constant dispatch table.
type ConstMap []ConstEntry
