// Package language defines the contract between the compiler and a target
// language backend.
//
// A backend turns IR fragments into target source text. Every method returns a
// fragment and nothing else: no method parses or inspects the output of another,
// so the compiler can drive any registered backend without knowing its syntax.
package language

import (
	"github.com/broady/jsonmodel/ir"
	"github.com/broady/jsonmodel/model"
)

// Tokens replaced by GenCode in assembled code.
const (
	EntryToken   = "CHECK_FUNCTION_NAME"
	PackageToken = "CHECK_PACKAGE_NAME"
)

// Language is the backend contract.
//
// Generated checkers all share one signature: they take the value under test
// (ir.Val), its path (ir.Path) and the active report, and return a boolean.
type Language interface {
	// Name returns the backend identifier (e.g., "go", "js").
	Name() string

	// Options returns the options the backend was built with.
	Options() Options

	// IsDef tests that a variable holds a value: a checker looked up in a
	// dispatch table, or a property fetched from an object.
	IsDef(v ir.Var) ir.BoolExpr

	// IsA tests the JSON type of v. With loose set, Int accepts any number
	// exactly representable as a 64-bit integer and Float accepts any number.
	IsA(v ir.JSONExpr, t ir.Type, loose bool) ir.BoolExpr

	IsNum(v ir.JSONExpr) ir.BoolExpr
	IsScalar(v ir.JSONExpr) ir.BoolExpr

	// Value extracts the native value of v. It is only valid when IsA(v, t)
	// holds: Int yields a 64-bit integer, Float and Number a float.
	Value(v ir.JSONExpr, t ir.Type) ir.Expr

	// Predef checks a predefined format. When isStr is set the caller already
	// knows v is a string. When Options.WithPredef is false the format is not
	// checked and Predef degrades to the string type test alone (or to true
	// when isStr is set); format semantics are skipped, not failed.
	Predef(v ir.JSONExpr, f model.Format, path ir.PathExpr, isStr bool) ir.BoolExpr

	// ObjPropVal fetches a property of an object known to have it.
	ObjPropVal(obj ir.JSONExpr, prop string) ir.JSONExpr

	// HasProp tests that a value is an object holding prop.
	HasProp(obj ir.JSONExpr, prop string) ir.BoolExpr

	// ObjHasPropVal binds property prop of obj to dst, running missing when
	// the property is absent. dst must be declared with VarJSON.
	ObjHasPropVal(dst ir.Var, obj ir.JSONExpr, prop string, missing ir.Block) ir.Block

	// AnyLen returns the element count of an array or the property count of
	// an object.
	AnyLen(v ir.JSONExpr) ir.IntExpr

	// StrLen returns the length in characters of a value known to be a string.
	StrLen(v ir.JSONExpr) ir.IntExpr

	// ArrItem indexes an array known to be long enough.
	ArrItem(arr ir.JSONExpr, idx ir.IntExpr) ir.JSONExpr

	// ArrLoop iterates over an array in order. idx may be empty when the
	// body does not use it.
	ArrLoop(arr ir.JSONExpr, idx, item ir.Var, body ir.Block) ir.Block

	// ObjLoop iterates over the properties of an object in lexical key order.
	// val may be empty when the body does not use it.
	ObjLoop(obj ir.JSONExpr, key, val ir.Var, body ir.Block) ir.Block

	// IntLoop counts idx from start up to, excluding, end.
	IntLoop(idx ir.Var, start, end ir.IntExpr, body ir.Block) ir.Block

	IfStmt(cond ir.BoolExpr, then, els ir.Block) ir.Block

	// MIfStmt emits an if/else-if chain: the first branch whose condition
	// holds runs. Hints never change which branch runs.
	MIfStmt(branches []ir.Branch, els ir.Block) ir.Block

	// IsReporting reports whether generated code collects diagnostics.
	IsReporting() bool

	// Report appends one diagnostic when a report is active.
	Report(msg string, path ir.PathExpr) ir.Block

	// ReportMark declares mark holding the current size of the report.
	ReportMark(mark ir.Var) ir.Block

	// CleanReport discards every diagnostic appended since mark.
	CleanReport(mark ir.Var) ir.Block

	// PathVal extends path by a property name or an array index.
	PathVal(path ir.PathExpr, seg ir.Expr, isIndex bool) ir.PathExpr

	// PathLVar yields lpath when path tracking is active for path, and the
	// null path otherwise.
	PathLVar(lpath, path ir.PathExpr) ir.PathExpr

	// SubFun defines a checker function.
	SubFun(name string, body ir.Block) ir.Block

	// CallFun invokes a checker, by name or through a checker variable,
	// forwarding the active report.
	CallFun(fun ir.Expr, v ir.JSONExpr, path ir.PathExpr) ir.BoolExpr

	// SubRe defines the matcher function of a regex.
	SubRe(name string) ir.Block

	// DefRe declares the global holding a compiled regex.
	DefRe(name string) ir.Block

	// IniRe compiles a regex into its global. The pattern has been validated.
	IniRe(name string, p model.Pattern) ir.Block

	// MatchRe calls the matcher function of a regex on a string.
	MatchRe(name string, s ir.StrExpr) ir.BoolExpr

	DefPMap(name string) ir.Block
	IniPMap(name string, m ir.PropMap) ir.Block
	// GetPMap returns the checker bound to key, or a value failing IsDef.
	GetPMap(name string, key ir.StrExpr) ir.Expr

	DefCSet(name string) ir.Block
	IniCSet(name string, consts ir.ConstList) ir.Block
	// InCSet tests membership of a scalar; numbers match by value.
	InCSet(name string, v ir.JSONExpr) ir.BoolExpr

	DefCMap(name string) ir.Block
	IniCMap(name string, m ir.ConstMap) ir.Block
	// GetCMap returns the checker bound to a scalar, or a value failing IsDef.
	GetCMap(name string, v ir.JSONExpr) ir.Expr
	DelCMap(name string) ir.Block

	Decl(v ir.Var, t ir.VarType, init ir.Expr) ir.Block
	Assign(v ir.Var, e ir.Expr) ir.Block
	Return(e ir.BoolExpr) ir.Block
	Comment(text string) ir.Block
	Not(e ir.BoolExpr) ir.BoolExpr
	And(es ...ir.BoolExpr) ir.BoolExpr
	Or(es ...ir.BoolExpr) ir.BoolExpr
	Cmp(a ir.Expr, op ir.Op, b ir.Expr) ir.BoolExpr
	// EqConst tests equality with a scalar constant; numbers match by value.
	EqConst(v ir.JSONExpr, c ir.Const) ir.BoolExpr
	Lit(c ir.Const) ir.Expr
	Num(f float64) ir.Expr
	Str(s string) ir.StrExpr
	True() ir.BoolExpr
	False() ir.BoolExpr
	Null() ir.Expr

	// FileHeader returns the package clause, imports and runtime prelude.
	FileHeader() ir.Block

	// GenInit wraps init statements into the one-time init function, which
	// also fills the entry map.
	GenInit(init ir.Block, entries ir.PropMap) ir.Block

	// GenFree wraps teardown statements into the free function.
	GenFree(free ir.Block) ir.Block

	// GenMainFunction returns a command line driver for the entry checker.
	GenMainFunction() ir.Block

	// GenFullCode assembles a file: header, globals, functions, init, free
	// and, when requested, the main function, in that order.
	GenFullCode(f File) ir.Block

	// GenCode renders assembled code, replacing EntryToken with entry and
	// PackageToken with pkg.
	GenCode(code ir.Block, entry, pkg string) []byte
}

// File is the content handed to GenFullCode.
type File struct {
	Globals ir.Block
	Funcs   ir.Block
	Init    ir.Block
	Free    ir.Block
	Entries ir.PropMap
	Main    bool
}

// Formatter is implemented by backends able to canonicalize their output.
type Formatter interface {
	Format(src []byte) ([]byte, error)
}
