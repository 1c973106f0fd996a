// Package javascript implements the JavaScript backend.
//
// Output is a single CommonJS file with the runtime support functions inlined.
// Paths are arrays of segments (null when tracking is off) and reports are
// arrays of {message, path} records.
//
// JSON.parse keeps no lexical number form, so strict and loose numeric tests
// coincide: an integer is any number exactly representable as a 64-bit integer.
package javascript

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/broady/jsonmodel/ir"
	"github.com/broady/jsonmodel/language"
	"github.com/broady/jsonmodel/model"
)

//go:embed runtime.js
var runtimeSource string

const indent = "  "

func init() {
	language.Register("js", func(opts language.Options) (language.Language, error) {
		js, err := New(opts)
		if err != nil {
			return nil, err
		}
		return js, nil
	})
}

// JavaScript generates JavaScript source.
type JavaScript struct {
	opts language.Options
}

var _ language.Language = (*JavaScript)(nil)

// New returns a JavaScript backend. The only regex library is the built-in
// RegExp, named "re".
func New(opts language.Options) (*JavaScript, error) {
	switch opts.Relib {
	case "":
		opts.Relib = "re"
	case "re":
	default:
		return nil, model.Errorf(model.CodeUnsupportedConfig, "js backend supports relib re, not %q", opts.Relib)
	}
	return &JavaScript{opts: opts}, nil
}

func (js *JavaScript) Name() string                { return "js" }
func (js *JavaScript) Options() language.Options { return js.opts }

func (js *JavaScript) IsDef(v ir.Var) ir.BoolExpr {
	return ir.BoolExpr(string(v) + " !== undefined")
}

func (js *JavaScript) IsA(v ir.JSONExpr, t ir.Type, loose bool) ir.BoolExpr {
	switch t {
	case ir.Null:
		return ir.BoolExpr(string(v) + " === null")
	case ir.Bool:
		return call("jm_is_bool", string(v))
	case ir.Int:
		return call("jm_is_integer", string(v), strconv.FormatBool(loose))
	case ir.Float:
		return call("jm_is_float", string(v), strconv.FormatBool(loose))
	case ir.Number:
		return call("jm_is_number", string(v))
	case ir.String:
		return call("jm_is_string", string(v))
	case ir.Array:
		return call("jm_is_array", string(v))
	case ir.Object:
		return call("jm_is_object", string(v))
	}
	panic(fmt.Sprintf("javascript: IsA on unknown type %d", int(t)))
}

func (js *JavaScript) IsNum(v ir.JSONExpr) ir.BoolExpr    { return call("jm_is_number", string(v)) }
func (js *JavaScript) IsScalar(v ir.JSONExpr) ir.BoolExpr { return call("jm_is_scalar", string(v)) }

// Value returns v itself: JavaScript values need no unwrapping.
func (js *JavaScript) Value(v ir.JSONExpr, t ir.Type) ir.Expr {
	if t == ir.Null {
		return "null"
	}
	return ir.Expr(v)
}

var formatChecks = map[model.Format]string{
	model.FormatUUID:     "jm_is_valid_uuid",
	model.FormatDate:     "jm_is_valid_date",
	model.FormatTime:     "jm_is_valid_time",
	model.FormatDateTime: "jm_is_valid_datetime",
	model.FormatRegex:    "jm_is_valid_regex",
	model.FormatURL:      "jm_is_valid_url",
	model.FormatURI:      "jm_is_valid_uri",
	model.FormatEmail:    "jm_is_valid_email",
	model.FormatJSON:     "jm_is_valid_json",
}

func (js *JavaScript) Predef(v ir.JSONExpr, f model.Format, path ir.PathExpr, isStr bool) ir.BoolExpr {
	if !js.opts.WithPredef {
		if isStr {
			return "true"
		}
		return js.IsA(v, ir.String, false)
	}
	fn, ok := formatChecks[f]
	if !ok {
		panic(fmt.Sprintf("javascript: unknown format %q", string(f)))
	}
	if isStr {
		return call(fn, string(v))
	}
	return js.And(js.IsA(v, ir.String, false), call(fn, string(v)))
}

func (js *JavaScript) ObjPropVal(obj ir.JSONExpr, prop string) ir.JSONExpr {
	return ir.JSONExpr(language.Paren(string(obj)) + "[" + language.QuoteDouble(prop) + "]")
}

func (js *JavaScript) HasProp(obj ir.JSONExpr, prop string) ir.BoolExpr {
	return call("jm_has_prop", string(obj), language.QuoteDouble(prop))
}

func (js *JavaScript) ObjHasPropVal(dst ir.Var, obj ir.JSONExpr, prop string, missing ir.Block) ir.Block {
	return js.IfStmt(js.HasProp(obj, prop), js.Assign(dst, ir.Expr(js.ObjPropVal(obj, prop))), missing)
}

func (js *JavaScript) AnyLen(v ir.JSONExpr) ir.IntExpr {
	return ir.IntExpr(call("jm_len", string(v)))
}

func (js *JavaScript) StrLen(v ir.JSONExpr) ir.IntExpr {
	return ir.IntExpr(call("jm_str_len", string(v)))
}

func (js *JavaScript) ArrItem(arr ir.JSONExpr, idx ir.IntExpr) ir.JSONExpr {
	return ir.JSONExpr(language.Paren(string(arr)) + "[" + string(idx) + "]")
}

func (js *JavaScript) ArrLoop(arr ir.JSONExpr, idx, item ir.Var, body ir.Block) ir.Block {
	if idx == "" {
		if item == "" {
			item = "_"
		}
		return js.block("for (const "+string(item)+" of "+string(arr)+") {", body)
	}
	inner := body
	if item != "" {
		inner = ir.Concat(ir.Block{"const " + string(item) + " = " + string(js.ArrItem(arr, idx.Int())) + ";"}, body)
	}
	i := string(idx)
	return js.block("for (let "+i+" = 0; "+i+" < "+language.Paren(string(arr))+".length; "+i+"++) {", inner)
}

func (js *JavaScript) ObjLoop(obj ir.JSONExpr, key, val ir.Var, body ir.Block) ir.Block {
	inner := body
	if val != "" {
		inner = ir.Concat(ir.Block{"const " + string(val) + " = " + language.Paren(string(obj)) + "[" + string(key) + "];"}, body)
	}
	return js.block("for (const "+string(key)+" of "+string(call("jm_keys", string(obj)))+") {", inner)
}

func (js *JavaScript) IntLoop(idx ir.Var, start, end ir.IntExpr, body ir.Block) ir.Block {
	i := string(idx)
	return js.block("for (let "+i+" = "+string(start)+"; "+i+" < "+string(end)+"; "+i+"++) {", body)
}

func (js *JavaScript) IfStmt(cond ir.BoolExpr, then, els ir.Block) ir.Block {
	code := ir.Block{"if (" + string(cond) + ") {"}
	code = append(code, then.Indent(indent)...)
	if len(els) > 0 {
		code = append(code, "} else {")
		code = append(code, els.Indent(indent)...)
	}
	return append(code, "}")
}

func (js *JavaScript) MIfStmt(branches []ir.Branch, els ir.Block) ir.Block {
	if len(branches) == 0 {
		return els
	}
	var code ir.Block
	for i, br := range branches {
		line := "if (" + string(br.Cond) + ") {"
		if i > 0 {
			line = "} else " + line
		}
		if js.opts.Debug && br.Hint == ir.HintLikely {
			line += " // likely"
		}
		code = append(code, line)
		code = append(code, br.Body.Indent(indent)...)
	}
	if len(els) > 0 {
		code = append(code, "} else {")
		code = append(code, els.Indent(indent)...)
	}
	return append(code, "}")
}

func (js *JavaScript) IsReporting() bool { return js.opts.WithReport }

func (js *JavaScript) Report(msg string, path ir.PathExpr) ir.Block {
	if !js.opts.WithReport {
		return nil
	}
	return ir.Block{"if (rep !== null) rep.push({message: " + language.QuoteDouble(msg) + ", path: " + string(path) + "});"}
}

func (js *JavaScript) ReportMark(mark ir.Var) ir.Block {
	return ir.Block{"const " + string(mark) + " = rep !== null ? rep.length : 0;"}
}

func (js *JavaScript) CleanReport(mark ir.Var) ir.Block {
	return ir.Block{"if (rep !== null) rep.length = " + string(mark) + ";"}
}

func (js *JavaScript) PathVal(path ir.PathExpr, seg ir.Expr, isIndex bool) ir.PathExpr {
	if !js.opts.WithPath {
		return "null"
	}
	return ir.PathExpr(call("jm_path_ext", string(path), string(seg)))
}

func (js *JavaScript) PathLVar(lpath, path ir.PathExpr) ir.PathExpr {
	if !js.opts.WithPath {
		return "null"
	}
	return ir.PathExpr(call("jm_select_path", string(lpath), string(path)+" !== null"))
}

func (js *JavaScript) SubFun(name string, body ir.Block) ir.Block {
	return append(js.block("function "+name+"(val, path, rep) {", body), "")
}

func (js *JavaScript) CallFun(fun ir.Expr, v ir.JSONExpr, path ir.PathExpr) ir.BoolExpr {
	rep := "rep"
	if !js.opts.WithReport {
		rep = "null"
	}
	return call(string(fun), string(v), string(path), rep)
}

func (js *JavaScript) SubRe(name string) ir.Block {
	return ir.Block{
		"function " + name + "(s) {",
		indent + "return " + name + "_re.test(s);",
		"}",
		"",
	}
}

func (js *JavaScript) DefRe(name string) ir.Block {
	return ir.Block{"let " + name + "_re = null;"}
}

func (js *JavaScript) IniRe(name string, p model.Pattern) ir.Block {
	flags, err := model.NormalizeFlags(p.Flags)
	if err != nil {
		panic("javascript: IniRe on an unvalidated pattern: " + err.Error())
	}
	return ir.Block{name + "_re = new RegExp(" + language.QuoteDouble(p.Regex) + ", " + language.QuoteDouble(flags) + ");"}
}

func (js *JavaScript) MatchRe(name string, s ir.StrExpr) ir.BoolExpr {
	return call(name, string(s))
}

func (js *JavaScript) DefPMap(name string) ir.Block {
	return ir.Block{"let " + name + " = null;"}
}

func (js *JavaScript) IniPMap(name string, m ir.PropMap) ir.Block {
	code := ir.Block{name + " = new Map(["}
	for _, e := range m {
		code = append(code, indent+"["+language.QuoteDouble(e.Name)+", "+e.Fun+"],")
	}
	return append(code, "]);")
}

func (js *JavaScript) GetPMap(name string, key ir.StrExpr) ir.Expr {
	return ir.Expr(name + ".get(" + string(key) + ")")
}

func (js *JavaScript) DefCSet(name string) ir.Block {
	return ir.Block{"let " + name + " = null;"}
}

func (js *JavaScript) IniCSet(name string, consts ir.ConstList) ir.Block {
	code := ir.Block{name + " = new Set(["}
	for _, c := range consts {
		code = append(code, indent+string(js.Lit(c))+",")
	}
	return append(code, "]);")
}

func (js *JavaScript) InCSet(name string, v ir.JSONExpr) ir.BoolExpr {
	return ir.BoolExpr(name + ".has(" + string(call("jm_key", string(v))) + ")")
}

func (js *JavaScript) DefCMap(name string) ir.Block {
	return ir.Block{"let " + name + " = null;"}
}

func (js *JavaScript) IniCMap(name string, m ir.ConstMap) ir.Block {
	code := ir.Block{name + " = new Map(["}
	for _, e := range m {
		code = append(code, indent+"["+string(js.Lit(e.Const))+", "+e.Fun+"],")
	}
	return append(code, "]);")
}

func (js *JavaScript) GetCMap(name string, v ir.JSONExpr) ir.Expr {
	return ir.Expr(name + ".get(" + string(call("jm_key", string(v))) + ")")
}

func (js *JavaScript) DelCMap(name string) ir.Block {
	return ir.Block{name + " = null;"}
}

func (js *JavaScript) Decl(v ir.Var, t ir.VarType, init ir.Expr) ir.Block {
	if init == "" {
		return ir.Block{"let " + string(v) + ";"}
	}
	return ir.Block{"let " + string(v) + " = " + string(init) + ";"}
}

func (js *JavaScript) Assign(v ir.Var, e ir.Expr) ir.Block {
	return ir.Block{string(v) + " = " + string(e) + ";"}
}

func (js *JavaScript) Return(e ir.BoolExpr) ir.Block {
	return ir.Block{"return " + string(e) + ";"}
}

func (js *JavaScript) Comment(text string) ir.Block {
	return ir.Block{"// " + language.CommentText(text)}
}

func (js *JavaScript) Not(e ir.BoolExpr) ir.BoolExpr {
	switch e {
	case "true":
		return "false"
	case "false":
		return "true"
	}
	return ir.BoolExpr("!" + language.Paren(string(e)))
}

func (js *JavaScript) And(es ...ir.BoolExpr) ir.BoolExpr {
	return join(es, " && ", "true", "false")
}

func (js *JavaScript) Or(es ...ir.BoolExpr) ir.BoolExpr {
	return join(es, " || ", "false", "true")
}

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

var cmpOps = map[model.Op]string{
	model.Eq: "===",
	model.Ne: "!==",
}

func (js *JavaScript) Cmp(a ir.Expr, op ir.Op, b ir.Expr) ir.BoolExpr {
	sym, ok := cmpOps[op]
	if !ok {
		sym = op.String()
	}
	return ir.BoolExpr(string(a) + " " + sym + " " + string(b))
}

func (js *JavaScript) EqConst(v ir.JSONExpr, c ir.Const) ir.BoolExpr {
	return ir.BoolExpr(string(v) + " === " + string(js.Lit(c)))
}

func (js *JavaScript) Lit(c ir.Const) ir.Expr {
	switch v := c.Value().(type) {
	case nil:
		return "null"
	case bool:
		return ir.Expr(strconv.FormatBool(v))
	case int64:
		return ir.Expr(strconv.FormatInt(v, 10))
	case float64:
		return js.Num(v)
	case string:
		return ir.Expr(language.QuoteDouble(v))
	}
	panic(fmt.Sprintf("javascript: constant of type %T", c.Value()))
}

func (js *JavaScript) Num(f float64) ir.Expr    { return ir.Expr(language.FormatNumber(f)) }
func (js *JavaScript) Str(s string) ir.StrExpr { return ir.StrExpr(language.QuoteDouble(s)) }
func (js *JavaScript) True() ir.BoolExpr       { return "true" }
func (js *JavaScript) False() ir.BoolExpr      { return "false" }
func (js *JavaScript) Null() ir.Expr           { return "null" }

func (js *JavaScript) FileHeader() ir.Block {
	header := ir.Block{"// Code generated by jmc. DO NOT EDIT."}
	if js.opts.WithPackage {
		header = append(header, "// module "+language.PackageToken)
	}
	header = append(header, `"use strict";`, "")
	return ir.Concat(header, lines(runtimeSource), ir.Block{""})
}

func (js *JavaScript) GenInit(init ir.Block, entries ir.PropMap) ir.Block {
	e := language.EntryToken
	body := ir.Concat(init, js.IniPMap(e+"_map", entries))
	code := ir.Block{
		"let " + e + "_ready = false;",
		"",
		"function " + e + "_init() {",
		indent + "if (" + e + "_ready) return;",
		indent + "try {",
	}
	code = append(code, body.Indent(indent+indent)...)
	return append(code,
		indent+"} catch (e) {",
		indent+indent+`throw new Error("cannot initialize model checker: " + e.message);`,
		indent+"}",
		indent+e+"_ready = true;",
		"}",
		"",
	)
}

func (js *JavaScript) GenFree(free ir.Block) ir.Block {
	e := language.EntryToken
	body := ir.Concat(free, ir.Block{
		e + "_map = null;",
		e + "_ready = false;",
	})
	return append(js.block("function "+e+"_free() {", body), "")
}

func (js *JavaScript) GenMainFunction() ir.Block {
	e := language.EntryToken
	body := ir.Block{
		"const args = process.argv.slice(2);",
		`const testMode = args[0] === "-t";`,
		"if (testMode) args.shift();",
		"if (args.length < 1) {",
		indent + "console.error(`Usage: ${process.argv[1]} [-t] <json_file>`);",
		indent + "process.exit(1);",
		"}",
		"let doc;",
		"try {",
		indent + `doc = JSON.parse(require("fs").readFileSync(args[0], "utf8"));`,
		"} catch (err) {",
		indent + "console.error(`JSON parsing error: ${err.message}`);",
		indent + "process.exit(1);",
		"}",
		"if (testMode) {",
		indent + "let failed = 0;",
		indent + "doc.forEach((c, i) => {",
		indent + indent + "if (!Array.isArray(c) || c.length < 2) return;",
		indent + indent + "const expected = c[0] === true;",
		indent + indent + "const rep = [];",
		indent + indent + "const got = " + e + "(c[1], \"\", rep);",
		indent + indent + "if (got === expected) {",
		indent + indent + indent + "console.log(`Test #${i}: PASS`);",
		indent + indent + indent + "return;",
		indent + indent + "}",
		indent + indent + "console.log(`Test #${i}: FAIL (expected ${expected}, got ${got})`);",
		indent + indent + "for (const msg of jm_report_errors(rep)) console.log(`  - ${msg}`);",
		indent + indent + "failed++;",
		indent + "});",
		indent + e + "_free();",
		indent + "if (failed > 0) {",
		indent + indent + "console.log(`\\nDone: ${failed} tests failed`);",
		indent + indent + "process.exit(1);",
		indent + "}",
		indent + `console.log("\nDone: all tests passed");`,
		"} else {",
		indent + "const rep = [];",
		indent + "const valid = " + e + "(doc, \"\", rep);",
		indent + e + "_free();",
		indent + "if (valid) {",
		indent + indent + `console.log("valid");`,
		indent + "} else {",
		indent + indent + `console.log("invalid:");`,
		indent + indent + "for (const msg of jm_report_errors(rep)) console.log(`  ${msg}`);",
		indent + indent + "process.exit(1);",
		indent + "}",
		"}",
	}
	return js.block("if (require.main === module) {", body)
}

func (js *JavaScript) entry() ir.Block {
	e := language.EntryToken
	path := "null"
	if js.opts.WithPath {
		path = "rep !== null ? [] : null"
	}
	body := ir.Block{
		e + "_init();",
		"const check = " + e + "_map.get(name);",
		"if (check === undefined) {",
		indent + "if (rep !== null) rep.push({message: \"unknown model entry \" + JSON.stringify(name), path: null});",
		indent + "return false;",
		"}",
		"return check(val, " + path + ", rep);",
	}
	code := ir.Block{`// ` + e + ` checks val against the named model entry, "" being the root.`}
	return append(append(code, js.block(`function `+e+`(val, name = "", rep = null) {`, body)...), "")
}

func (js *JavaScript) GenFullCode(f language.File) ir.Block {
	e := language.EntryToken
	code := ir.Concat(
		js.FileHeader(),
		f.Globals,
		ir.Block{"let " + e + "_map = null;", ""},
		f.Funcs,
		js.entry(),
		js.GenInit(f.Init, f.Entries),
		js.GenFree(f.Free),
	)
	if js.opts.WithPackage {
		code = append(code, "module.exports = {"+e+", "+e+"_init, "+e+"_free};", "")
	}
	if f.Main {
		code = ir.Concat(code, js.GenMainFunction())
	}
	return code
}

// GenCode sanitizes entry into a JavaScript identifier before substitution.
func (js *JavaScript) GenCode(code ir.Block, entry, pkg string) []byte {
	text := strings.Join(code, "\n") + "\n"
	return []byte(language.Replace(text, sanitizeIdentifier(entry), pkg))
}

func call(fn string, args ...string) ir.BoolExpr {
	return ir.BoolExpr(fn + "(" + strings.Join(args, ", ") + ")")
}

func (js *JavaScript) block(head string, body ir.Block) ir.Block {
	code := ir.Block{head}
	code = append(code, body.Indent(indent)...)
	return append(code, "}")
}

func lines(text string) ir.Block {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}
