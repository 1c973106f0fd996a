// Package golang implements the Go backend.
//
// Generated files import the runtime support library
// github.com/broady/jsonmodel/runtime/jsonmodel as jm and expose, for an entry
// name E: the checker E(val, name, rep), E_init, E_free and the E_map entry
// table. Checkers have the signature
//
//	func(val any, path *jm.Path, rep *jm.Report) bool
//
// and expect documents decoded with json.Decoder.UseNumber.
package golang

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/broady/jsonmodel/ir"
	"github.com/broady/jsonmodel/language"
	"github.com/broady/jsonmodel/model"
)

// RuntimeImport is the import path of the runtime support library.
const RuntimeImport = "github.com/broady/jsonmodel/runtime/jsonmodel"

var (
	//go:embed init.go.tmpl
	initTemplate string

	//go:embed main.go.tmpl
	mainTemplate string
)

func init() {
	language.Register("go", func(opts language.Options) (language.Language, error) {
		g, err := New(opts)
		if err != nil {
			return nil, err
		}
		return g, nil
	})
}

// Go generates Go source.
type Go struct {
	opts language.Options
}

var (
	_ language.Language  = (*Go)(nil)
	_ language.Formatter = (*Go)(nil)
)

// New returns a Go backend. Only the standard regexp package is supported;
// "re2" names the same engine.
func New(opts language.Options) (*Go, error) {
	switch opts.Relib {
	case "":
		opts.Relib = "regexp"
	case "regexp", "re2":
	default:
		return nil, model.Errorf(model.CodeUnsupportedConfig, "go backend supports relib regexp or re2, not %q", opts.Relib)
	}
	return &Go{opts: opts}, nil
}

func (g *Go) Name() string                { return "go" }
func (g *Go) Options() language.Options { return g.opts }

// --- Type tests ---

func (g *Go) IsDef(v ir.Var) ir.BoolExpr {
	return ir.BoolExpr(string(v) + " != nil")
}

func (g *Go) IsA(v ir.JSONExpr, t ir.Type, loose bool) ir.BoolExpr {
	switch t {
	case ir.Null:
		return ir.BoolExpr(string(v) + " == nil")
	case ir.Bool:
		return call("jm.IsBool", string(v))
	case ir.Int:
		return call("jm.IsInteger", string(v), strconv.FormatBool(loose))
	case ir.Float:
		return call("jm.IsFloat", string(v), strconv.FormatBool(loose))
	case ir.Number:
		return call("jm.IsNumber", string(v))
	case ir.String:
		return call("jm.IsString", string(v))
	case ir.Array:
		return call("jm.IsArray", string(v))
	case ir.Object:
		return call("jm.IsObject", string(v))
	}
	panic(fmt.Sprintf("golang: IsA on unknown type %d", int(t)))
}

func (g *Go) IsNum(v ir.JSONExpr) ir.BoolExpr    { return call("jm.IsNumber", string(v)) }
func (g *Go) IsScalar(v ir.JSONExpr) ir.BoolExpr { return call("jm.IsScalar", string(v)) }

func (g *Go) Value(v ir.JSONExpr, t ir.Type) ir.Expr {
	switch t {
	case ir.Null:
		return "nil"
	case ir.Bool:
		return ir.Expr(call("jm.AsBool", string(v)))
	case ir.Int:
		return ir.Expr(call("jm.AsInt", string(v)))
	case ir.Float, ir.Number:
		return ir.Expr(call("jm.AsFloat", string(v)))
	case ir.String:
		return ir.Expr(call("jm.AsString", string(v)))
	case ir.Array:
		return ir.Expr(call("jm.AsArray", string(v)))
	case ir.Object:
		return ir.Expr(call("jm.AsObject", string(v)))
	}
	panic(fmt.Sprintf("golang: Value on unknown type %d", int(t)))
}

var formatChecks = map[model.Format]string{
	model.FormatUUID:     "jm.IsValidUUID",
	model.FormatDate:     "jm.IsValidDate",
	model.FormatTime:     "jm.IsValidTime",
	model.FormatDateTime: "jm.IsValidDateTime",
	model.FormatRegex:    "jm.IsValidRegex",
	model.FormatURL:      "jm.IsValidURL",
	model.FormatURI:      "jm.IsValidURI",
	model.FormatEmail:    "jm.IsValidEmail",
	model.FormatJSON:     "jm.IsValidJSON",
}

// Predef ignores path: the runtime format checks do not report on their own.
func (g *Go) Predef(v ir.JSONExpr, f model.Format, path ir.PathExpr, isStr bool) ir.BoolExpr {
	if !g.opts.WithPredef {
		if isStr {
			return "true"
		}
		return g.IsA(v, ir.String, false)
	}
	fn, ok := formatChecks[f]
	if !ok {
		panic(fmt.Sprintf("golang: unknown format %q", string(f)))
	}
	check := call(fn, string(call("jm.AsString", string(v))))
	if isStr {
		return check
	}
	return g.And(g.IsA(v, ir.String, false), check)
}

// --- Containers ---

func (g *Go) ObjPropVal(obj ir.JSONExpr, prop string) ir.JSONExpr {
	return ir.JSONExpr(string(call("jm.AsObject", string(obj))) + "[" + language.QuoteDouble(prop) + "]")
}

func (g *Go) HasProp(obj ir.JSONExpr, prop string) ir.BoolExpr {
	return call("jm.HasProp", string(obj), language.QuoteDouble(prop))
}

func (g *Go) ObjHasPropVal(dst ir.Var, obj ir.JSONExpr, prop string, missing ir.Block) ir.Block {
	cond := call("jm.ObjectHasPropVal", string(obj), language.QuoteDouble(prop), "&"+string(dst))
	return g.IfStmt(g.Not(cond), missing, nil)
}

func (g *Go) AnyLen(v ir.JSONExpr) ir.IntExpr {
	return ir.IntExpr(call("jm.Len", string(v)))
}

func (g *Go) StrLen(v ir.JSONExpr) ir.IntExpr {
	return ir.IntExpr(call("jm.StrLen", string(call("jm.AsString", string(v)))))
}

func (g *Go) ArrItem(arr ir.JSONExpr, idx ir.IntExpr) ir.JSONExpr {
	return ir.JSONExpr(string(call("jm.AsArray", string(arr))) + "[" + string(idx) + "]")
}

func (g *Go) ArrLoop(arr ir.JSONExpr, idx, item ir.Var, body ir.Block) ir.Block {
	var head string
	switch {
	case idx == "" && item == "":
		head = "for range "
	case item == "":
		head = "for " + string(idx) + " := range "
	case idx == "":
		head = "for _, " + string(item) + " := range "
	default:
		head = "for " + string(idx) + ", " + string(item) + " := range "
	}
	return g.block(head+string(call("jm.AsArray", string(arr)))+" {", body)
}

func (g *Go) ObjLoop(obj ir.JSONExpr, key, val ir.Var, body ir.Block) ir.Block {
	inner := body
	if val != "" {
		inner = ir.Concat(ir.Block{string(val) + " := " + string(call("jm.AsObject", string(obj))) + "[" + string(key) + "]"}, body)
	}
	return g.block("for _, "+string(key)+" := range "+string(call("jm.Keys", string(obj)))+" {", inner)
}

func (g *Go) IntLoop(idx ir.Var, start, end ir.IntExpr, body ir.Block) ir.Block {
	i := string(idx)
	return g.block("for "+i+" := "+string(start)+"; "+i+" < "+string(end)+"; "+i+"++ {", body)
}

// --- Control flow ---

func (g *Go) IfStmt(cond ir.BoolExpr, then, els ir.Block) ir.Block {
	code := ir.Block{"if " + string(cond) + " {"}
	code = append(code, then.Indent("\t")...)
	if len(els) > 0 {
		code = append(code, "} else {")
		code = append(code, els.Indent("\t")...)
	}
	return append(code, "}")
}

func (g *Go) MIfStmt(branches []ir.Branch, els ir.Block) ir.Block {
	if len(branches) == 0 {
		return els
	}
	var code ir.Block
	for i, br := range branches {
		line := "if " + string(br.Cond) + " {"
		if i > 0 {
			line = "} else " + line
		}
		if g.opts.Debug && br.Hint != ir.HintNone {
			line += " // " + hintName(br.Hint)
		}
		code = append(code, line)
		code = append(code, br.Body.Indent("\t")...)
	}
	if len(els) > 0 {
		code = append(code, "} else {")
		code = append(code, els.Indent("\t")...)
	}
	return append(code, "}")
}

func hintName(h ir.Hint) string {
	if h == ir.HintLikely {
		return "likely"
	}
	return "unlikely"
}

// --- Reporting and paths ---

func (g *Go) IsReporting() bool { return g.opts.WithReport }

func (g *Go) Report(msg string, path ir.PathExpr) ir.Block {
	if !g.opts.WithReport {
		return nil
	}
	return ir.Block{"rep.Add(" + language.QuoteDouble(msg) + ", " + string(path) + ")"}
}

func (g *Go) ReportMark(mark ir.Var) ir.Block {
	return ir.Block{string(mark) + " := rep.Len()"}
}

func (g *Go) CleanReport(mark ir.Var) ir.Block {
	return ir.Block{"rep.Truncate(" + string(mark) + ")"}
}

func (g *Go) PathVal(path ir.PathExpr, seg ir.Expr, isIndex bool) ir.PathExpr {
	if !g.opts.WithPath {
		return "nil"
	}
	if isIndex {
		return ir.PathExpr(call("jm.ExtendPathIndex", string(path), string(seg)))
	}
	return ir.PathExpr(call("jm.ExtendPath", string(path), string(seg)))
}

func (g *Go) PathLVar(lpath, path ir.PathExpr) ir.PathExpr {
	if !g.opts.WithPath {
		return "nil"
	}
	return ir.PathExpr(call("jm.SelectPath", string(lpath), string(path)+" != nil"))
}

// --- Functions and regexes ---

func (g *Go) SubFun(name string, body ir.Block) ir.Block {
	return append(g.block("func "+name+"(val any, path *jm.Path, rep *jm.Report) bool {", body), "")
}

func (g *Go) CallFun(fun ir.Expr, v ir.JSONExpr, path ir.PathExpr) ir.BoolExpr {
	rep := "rep"
	if !g.opts.WithReport {
		rep = "nil"
	}
	return call(string(fun), string(v), string(path), rep)
}

func (g *Go) SubRe(name string) ir.Block {
	return ir.Block{
		"func " + name + "(s string) bool {",
		"\treturn " + name + "_re.MatchString(s)",
		"}",
		"",
	}
}

func (g *Go) DefRe(name string) ir.Block {
	return ir.Block{"var " + name + "_re *regexp.Regexp"}
}

func (g *Go) IniRe(name string, p model.Pattern) ir.Block {
	expr, err := p.Inline()
	if err != nil {
		panic("golang: IniRe on an unvalidated pattern: " + err.Error())
	}
	return ir.Block{name + "_re = regexp.MustCompile(" + language.QuoteDouble(expr) + ")"}
}

func (g *Go) MatchRe(name string, s ir.StrExpr) ir.BoolExpr {
	return call(name, string(s))
}

// --- Dispatch tables ---

func (g *Go) DefPMap(name string) ir.Block {
	return ir.Block{"var " + name + " map[string]jm.Checker"}
}

func (g *Go) IniPMap(name string, m ir.PropMap) ir.Block {
	code := ir.Block{name + " = map[string]jm.Checker{"}
	for _, e := range m {
		code = append(code, "\t"+language.QuoteDouble(e.Name)+": "+e.Fun+",")
	}
	return append(code, "}")
}

func (g *Go) GetPMap(name string, key ir.StrExpr) ir.Expr {
	return ir.Expr(name + "[" + string(key) + "]")
}

func (g *Go) DefCSet(name string) ir.Block {
	return ir.Block{"var " + name + " map[any]bool"}
}

func (g *Go) IniCSet(name string, consts ir.ConstList) ir.Block {
	code := ir.Block{name + " = map[any]bool{"}
	for _, c := range consts {
		code = append(code, "\t"+keyLit(c)+": true,")
	}
	return append(code, "}")
}

func (g *Go) InCSet(name string, v ir.JSONExpr) ir.BoolExpr {
	return ir.BoolExpr(name + "[" + string(call("jm.Key", string(v))) + "]")
}

func (g *Go) DefCMap(name string) ir.Block {
	return ir.Block{"var " + name + " map[any]jm.Checker"}
}

func (g *Go) IniCMap(name string, m ir.ConstMap) ir.Block {
	code := ir.Block{name + " = map[any]jm.Checker{"}
	for _, e := range m {
		code = append(code, "\t"+keyLit(e.Const)+": "+e.Fun+",")
	}
	return append(code, "}")
}

func (g *Go) GetCMap(name string, v ir.JSONExpr) ir.Expr {
	return ir.Expr(name + "[" + string(call("jm.Key", string(v))) + "]")
}

func (g *Go) DelCMap(name string) ir.Block {
	return ir.Block{name + " = nil"}
}

// keyLit renders the jm.Key of a constant with its exact dynamic type, so
// that map lookups through jm.Key hit.
func keyLit(c ir.Const) string {
	switch k := c.Key().(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(k)
	case int64:
		return "int64(" + strconv.FormatInt(k, 10) + ")"
	case float64:
		return "float64(" + strconv.FormatFloat(k, 'g', -1, 64) + ")"
	case string:
		return language.QuoteDouble(k)
	}
	panic(fmt.Sprintf("golang: constant of type %T", c.Key()))
}

// --- Statements and literals ---

var varTypes = map[ir.VarType]string{
	ir.VarJSON:    "any",
	ir.VarBool:    "bool",
	ir.VarInt:     "int",
	ir.VarPath:    "*jm.Path",
	ir.VarChecker: "jm.Checker",
}

func (g *Go) Decl(v ir.Var, t ir.VarType, init ir.Expr) ir.Block {
	line := "var " + string(v) + " " + varTypes[t]
	if init != "" {
		line += " = " + string(init)
	}
	return ir.Block{line}
}

func (g *Go) Assign(v ir.Var, e ir.Expr) ir.Block {
	return ir.Block{string(v) + " = " + string(e)}
}

func (g *Go) Return(e ir.BoolExpr) ir.Block {
	return ir.Block{"return " + string(e)}
}

func (g *Go) Comment(text string) ir.Block {
	return ir.Block{"// " + language.CommentText(text)}
}

func (g *Go) Not(e ir.BoolExpr) ir.BoolExpr {
	switch e {
	case "true":
		return "false"
	case "false":
		return "true"
	}
	return ir.BoolExpr("!" + language.Paren(string(e)))
}

func (g *Go) And(es ...ir.BoolExpr) ir.BoolExpr {
	return join(es, " && ", "true", "false")
}

func (g *Go) Or(es ...ir.BoolExpr) ir.BoolExpr {
	return join(es, " || ", "false", "true")
}

// join combines operands, dropping neutral ones and folding on an absorbing one.
func join(es []ir.BoolExpr, op string, neutral, absorbing ir.BoolExpr) ir.BoolExpr {
	var kept []ir.BoolExpr
	for _, e := range es {
		switch e {
		case neutral, "":
			continue
		case absorbing:
			return absorbing
		}
		kept = append(kept, e)
	}
	switch len(kept) {
	case 0:
		return neutral
	case 1:
		return kept[0]
	}
	parts := make([]string, len(kept))
	for i, e := range kept {
		parts[i] = language.Paren(string(e))
	}
	return ir.BoolExpr(strings.Join(parts, op))
}

func (g *Go) Cmp(a ir.Expr, op ir.Op, b ir.Expr) ir.BoolExpr {
	return ir.BoolExpr(string(a) + " " + op.String() + " " + string(b))
}

func (g *Go) EqConst(v ir.JSONExpr, c ir.Const) ir.BoolExpr {
	if c.Type() == ir.Null {
		return g.IsA(v, ir.Null, false)
	}
	return call("jm.Equal", string(v), string(g.Lit(c)))
}

func (g *Go) Lit(c ir.Const) ir.Expr {
	switch v := c.Value().(type) {
	case nil:
		return "nil"
	case bool:
		return ir.Expr(strconv.FormatBool(v))
	case int64:
		return ir.Expr(strconv.FormatInt(v, 10))
	case float64:
		return g.Num(v)
	case string:
		return ir.Expr(language.QuoteDouble(v))
	}
	panic(fmt.Sprintf("golang: constant of type %T", c.Value()))
}

func (g *Go) Num(f float64) ir.Expr    { return ir.Expr(language.FormatNumber(f)) }
func (g *Go) Str(s string) ir.StrExpr { return ir.StrExpr(language.QuoteDouble(s)) }
func (g *Go) True() ir.BoolExpr       { return "true" }
func (g *Go) False() ir.BoolExpr      { return "false" }
func (g *Go) Null() ir.Expr           { return "nil" }

// --- File assembly ---

func (g *Go) FileHeader() ir.Block {
	return ir.Block{
		"// Code generated by jmc. DO NOT EDIT.",
		"",
		"package " + language.PackageToken,
		"",
		"import (",
		"\t\"encoding/json\"",
		"\t\"flag\"",
		"\t\"fmt\"",
		"\t\"os\"",
		"\t\"regexp\"",
		"\t\"sync\"",
		"",
		"\tjm " + strconv.Quote(RuntimeImport),
		")",
		"",
	}
}

func (g *Go) GenInit(init ir.Block, entries ir.PropMap) ir.Block {
	body := ir.Concat(init, g.IniPMap(language.EntryToken+"_map", entries))
	var code ir.Block
	for _, line := range lines(initTemplate) {
		if line == "INIT_BLOCK" {
			code = append(code, body.Indent("\t\t")...)
			continue
		}
		code = append(code, line)
	}
	return append(code, "")
}

func (g *Go) GenFree(free ir.Block) ir.Block {
	e := language.EntryToken
	body := ir.Concat(free, ir.Block{
		e + "_map = nil",
		e + "_once = sync.Once{}",
	})
	code := ir.Block{
		"// " + e + "_free releases the tables built by " + e + "_init.",
		"// It must not run concurrently with checks.",
	}
	return append(append(code, g.block("func "+e+"_free() {", body)...), "")
}

func (g *Go) GenMainFunction() ir.Block {
	return lines(mainTemplate)
}

// entry renders the public checker that resolves a model entry by name.
func (g *Go) entry() ir.Block {
	e := language.EntryToken
	path := "nil"
	var setup ir.Block
	if g.opts.WithPath {
		path = "path"
		setup = ir.Block{
			"var path *jm.Path",
			"if rep != nil {",
			"\tpath = jm.RootPath()",
			"}",
		}
	}
	body := ir.Concat(
		ir.Block{
			e + "_init()",
			"check, ok := " + e + "_map[name]",
			"if !ok {",
			"\trep.Add(fmt.Sprintf(\"unknown model entry %q\", name), nil)",
			"\treturn false",
			"}",
		},
		setup,
		ir.Block{"return check(val, " + path + ", rep)"},
	)
	code := ir.Block{`// ` + e + ` checks val against the named model entry, "" being the root.`}
	return append(append(code, g.block("func "+e+"(val any, name string, rep *jm.Report) bool {", body)...), "")
}

func (g *Go) GenFullCode(f language.File) ir.Block {
	header := g.FileHeader()
	if f.Main {
		for i, line := range header {
			header[i] = strings.ReplaceAll(line, language.PackageToken, "main")
		}
	}
	globals := ir.Concat(f.Globals, ir.Block{"var " + language.EntryToken + "_map map[string]jm.Checker"})
	code := ir.Concat(
		header,
		globals,
		ir.Block{""},
		f.Funcs,
		g.entry(),
		g.GenInit(f.Init, f.Entries),
		g.GenFree(f.Free),
	)
	if f.Main {
		code = ir.Concat(code, g.GenMainFunction())
	}
	return code
}

func (g *Go) GenCode(code ir.Block, entry, pkg string) []byte {
	if pkg == "" || !g.opts.WithPackage {
		pkg = "main"
	}
	text := strings.Join(code, "\n") + "\n"
	return []byte(language.Replace(text, entry, pkg))
}

// Format runs goimports over generated source: unused imports of the fixed
// header are dropped and the file is gofmt'ed.
func (g *Go) Format(src []byte) ([]byte, error) {
	out, err := imports.Process("generated.go", src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("format generated go: %w", err)
	}
	return out, nil
}

// --- helpers ---

func call(fn string, args ...string) ir.BoolExpr {
	return ir.BoolExpr(fn + "(" + strings.Join(args, ", ") + ")")
}

func (g *Go) block(head string, body ir.Block) ir.Block {
	code := ir.Block{head}
	code = append(code, body.Indent("\t")...)
	return append(code, "}")
}

func lines(text string) ir.Block {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
