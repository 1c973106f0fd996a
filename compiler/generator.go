package compiler

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/broady/jsonmodel/ir"
	"github.com/broady/jsonmodel/language"
	"github.com/broady/jsonmodel/model"
	"github.com/broady/jsonmodel/optimizer"
)

// Locals of generated checkers. Each checker body compiles exactly one node,
// so a name is declared at most once per function.
const (
	varProp ir.Var = "pval"
	varKey  ir.Var = "prop"
	varItem ir.Var = "item"
	varIdx  ir.Var = "idx"
	varFun  ir.Var = "fun"
	varTag  ir.Var = "tag"
	varMark ir.Var = "mark"
)

const noMatch = "no alternative matched"

// generator holds the state of one compilation.
type generator struct {
	lang    language.Language
	model   *model.Model
	opt     *optimizer.Optimizer
	globals *Globals
	log     *slog.Logger
	main    bool

	funcs ir.Block
	defs  map[string]string
	nfun  int
	stats Stats
}

func newGenerator(lang language.Language, m *model.Model, opts Options, log *slog.Logger) *generator {
	return &generator{
		lang: lang,
		model: m,
		opt: optimizer.New(m, optimizer.Options{
			Mode:         opts.Dispatch,
			MinTableSize: opts.MinTableSize,
		}),
		globals: newGlobals(lang),
		log:     log,
		main:    opts.Main,
		defs:    map[string]string{},
	}
}

// generate compiles the root and every def, then lays out the file.
func (g *generator) generate() (language.File, error) {
	root, err := g.named(g.model.Root, "$")
	if err != nil {
		return language.File{}, err
	}
	entries := ir.PropMap{{Name: "", Fun: root}}
	for _, name := range g.model.DefNames() {
		fun, err := g.def(name)
		if err != nil {
			return language.File{}, err
		}
		entries = append(entries, ir.PropEntry{Name: name, Fun: fun})
	}
	g.stats.Entries = len(entries)

	return language.File{
		Globals: g.globals.decls,
		Funcs:   ir.Concat(g.globals.subs, g.funcs),
		Init:    g.globals.init,
		Free:    g.globals.free,
		Entries: entries,
		Main:    g.main,
	}, nil
}

func (g *generator) statistics() Stats {
	s := g.stats
	o := g.opt.Stats()
	s.DedupHits = o.DedupHits
	s.Tables = o.Tables
	s.Chains = o.Chains
	s.Regexes = g.globals.Regexes()
	return s
}

// def returns the checker of a named def, compiling it on first use.
func (g *generator) def(name string) (string, error) {
	if fun, ok := g.defs[name]; ok {
		return fun, nil
	}
	return g.namedAs(g.model.Defs[name], "$"+name, func(fun string) { g.defs[name] = fun })
}

func (g *generator) named(n *model.Node, loc string) (string, error) {
	return g.namedAs(n, loc, nil)
}

// namedAs returns the checker function of n. bind receives the name before
// the body is compiled, so recursive references resolve to it.
func (g *generator) namedAs(n *model.Node, loc string, bind func(string)) (string, error) {
	if bind == nil {
		bind = func(string) {}
	}
	if n.Kind == model.KindReference {
		fun, err := g.def(n.Ref)
		if err != nil {
			return "", err
		}
		bind(fun)
		return fun, nil
	}

	fun, ok, err := g.opt.Lookup(n)
	if err != nil {
		return "", err
	}
	if ok {
		g.log.Debug("reusing checker", "fun", fun, "loc", loc)
		bind(fun)
		return fun, nil
	}

	g.nfun++
	fun = "json_model_" + strconv.Itoa(g.nfun)
	g.opt.Register(n, fun)
	bind(fun)

	body, err := g.body(n, loc)
	if err != nil {
		return "", err
	}
	var head ir.Block
	if g.lang.Options().Debug {
		head = g.lang.Comment("check " + loc)
		if n.Doc != "" {
			head = ir.Concat(head, g.lang.Comment(n.Doc))
		}
	}
	g.funcs = ir.Concat(g.funcs, head, g.lang.SubFun(fun, body))
	g.stats.Checkers++
	g.log.Debug("checker", "fun", fun, "loc", loc, "kind", n.Kind)
	return fun, nil
}

func (g *generator) body(n *model.Node, loc string) (ir.Block, error) {
	switch n.Kind {
	case model.KindObject:
		return g.object(n, loc)
	case model.KindArray:
		return g.array(n, loc)
	case model.KindAlternation:
		return g.alternation(n, loc)
	}
	c := g.inline(n, ir.Val.JSON(), ir.Path.Path())
	if c.trivial {
		return g.lang.Return(g.lang.True()), nil
	}
	return ir.Concat(
		g.guard(c.expr, c.msg, ir.Path.Path()),
		g.lang.Return(g.lang.True()),
	), nil
}

// check is how a value is validated by one node.
type check struct {
	expr ir.BoolExpr

	// msg is the diagnostic of an inlined check. It is empty when expr calls a
	// checker, which reports its own failures.
	msg string

	// trivial checks accept every value.
	trivial bool
}

// check validates v at path against n, inlining scalar nodes.
func (g *generator) check(n *model.Node, v ir.JSONExpr, path ir.PathExpr, loc string) (check, error) {
	switch n.Kind {
	case model.KindObject, model.KindArray, model.KindAlternation, model.KindReference:
		fun, err := g.named(n, loc)
		if err != nil {
			return check{}, err
		}
		return check{expr: g.lang.CallFun(ir.Expr(fun), v, path)}, nil
	}
	g.stats.Inlined++
	return g.inline(n, v, path), nil
}

// guard returns false from the current checker when cond fails, reporting
// msg at path.
func (g *generator) guard(cond ir.BoolExpr, msg string, path ir.PathExpr) ir.Block {
	return g.lang.IfStmt(g.lang.Not(cond), g.failure(msg, path), nil)
}

func (g *generator) failure(msg string, path ir.PathExpr) ir.Block {
	return ir.Concat(g.lang.Report(msg, path), g.lang.Return(g.lang.False()))
}

// verify returns false from the current checker when c fails on a child
// value at path.
func (g *generator) verify(c check, path ir.PathExpr) ir.Block {
	if c.trivial {
		return nil
	}
	var fail ir.Block
	if c.msg != "" {
		fail = g.lang.Report(c.msg, g.lang.PathLVar(path, ir.Path.Path()))
	}
	return g.lang.IfStmt(g.lang.Not(c.expr), ir.Concat(fail, g.lang.Return(g.lang.False())), nil)
}

// reportsPath tells whether verifying c refers to the child path: a checker
// call always receives it, an inlined check only needs it to report.
func (g *generator) reportsPath(c check) bool {
	if c.trivial || !g.lang.Options().WithPath {
		return false
	}
	return c.msg == "" || g.lang.IsReporting()
}

func (g *generator) object(n *model.Node, loc string) (ir.Block, error) {
	L := g.lang
	val, path := ir.Val.JSON(), ir.Path.Path()

	code := g.guard(L.IsA(val, ir.Object, false), "expecting object", path)
	if len(n.Constraints) > 0 {
		code = ir.Concat(code, g.guard(g.lenBounds(L.AnyLen(val), n.Constraints),
			"invalid property count, expecting"+constraintText(n.Constraints), path))
	}

	var mandatory, optional []model.Property
	for _, p := range n.Properties {
		if p.Required {
			mandatory = append(mandatory, p)
		} else {
			optional = append(optional, p)
		}
	}

	if len(mandatory) > 0 {
		code = ir.Concat(code, L.Decl(varProp, ir.VarJSON, ""))
	}
	for _, p := range mandatory {
		ppath := L.PathVal(path, ir.Expr(L.Str(p.Name)), false)
		code = ir.Concat(code, L.ObjHasPropVal(varProp, val, p.Name,
			g.failure("missing mandatory property "+strconv.Quote(p.Name), path)))
		c, err := g.check(p.Node, varProp.JSON(), ppath, loc+"."+p.Name)
		if err != nil {
			return nil, err
		}
		code = ir.Concat(code, g.verify(c, ppath))
	}

	extras := n.Additional != nil && n.Additional.Kind != model.KindAny
	switch {
	case n.Closed && len(optional) == 0:
		count := L.Cmp(ir.Expr(L.AnyLen(val)), model.Eq, L.Num(float64(len(mandatory))))
		code = ir.Concat(code, g.guard(count, "unexpected property", path))
	case len(optional) > 0 || extras:
		loop, err := g.properties(n, mandatory, optional, loc)
		if err != nil {
			return nil, err
		}
		code = ir.Concat(code, loop)
	}
	return ir.Concat(code, L.Return(L.True())), nil
}

// properties loops over the members of an object to check optional and
// additional properties. Mandatory ones were checked before the loop.
func (g *generator) properties(n *model.Node, mandatory, optional []model.Property, loc string) (ir.Block, error) {
	L := g.lang
	val, path := ir.Val.JSON(), ir.Path.Path()
	ppath := L.PathVal(path, varKey.Expr(), false)
	used := false

	var extra ir.Block
	switch {
	case n.Closed:
		extra = g.failure("unexpected property", L.PathLVar(ppath, path))
	case n.Additional != nil && n.Additional.Kind != model.KindAny:
		c, err := g.check(n.Additional, varItem.JSON(), ppath, loc+".*")
		if err != nil {
			return nil, err
		}
		extra = g.verify(c, ppath)
		used = true
	}

	var body ir.Block
	if len(optional) > 0 && g.opt.Dispatch(len(optional)) == optimizer.UseTable {
		pm := make(ir.PropMap, 0, len(optional))
		for _, p := range optional {
			fun, err := g.named(p.Node, loc+"."+p.Name)
			if err != nil {
				return nil, err
			}
			pm = append(pm, ir.PropEntry{Name: p.Name, Fun: fun})
		}
		table := g.globals.PMap(pm)
		body = ir.Concat(
			L.Decl(varFun, ir.VarChecker, L.GetPMap(table, varKey.Str())),
			L.IfStmt(L.IsDef(varFun),
				g.verify(check{expr: L.CallFun(varFun.Expr(), varItem.JSON(), ppath)}, ppath),
				extra),
		)
		used = true
	} else {
		branches := make([]ir.Branch, 0, len(optional))
		for _, p := range optional {
			c, err := g.check(p.Node, varItem.JSON(), ppath, loc+"."+p.Name)
			if err != nil {
				return nil, err
			}
			used = used || !c.trivial
			branches = append(branches, ir.Branch{
				Cond: L.Cmp(varKey.Expr(), model.Eq, ir.Expr(L.Str(p.Name))),
				Body: g.verify(c, ppath),
			})
		}
		body = L.MIfStmt(branches, extra)
	}

	if len(extra) > 0 && len(mandatory) > 0 {
		skip := []ir.Branch{{
			Cond: g.isOneOf(varKey, mandatory),
			Hint: ir.HintLikely,
			Body: L.Comment("mandatory, checked above"),
		}}
		body = L.MIfStmt(skip, body)
	}

	item := varItem
	if !used {
		item = ""
	}
	return L.ObjLoop(val, varKey, item, body), nil
}

// isOneOf tests a property name against a list of properties.
func (g *generator) isOneOf(key ir.Var, props []model.Property) ir.BoolExpr {
	L := g.lang
	if g.opt.Dispatch(len(props)) == optimizer.UseTable {
		names := make(ir.ConstList, len(props))
		for i, p := range props {
			names[i] = ir.StrConst(p.Name)
		}
		return L.InCSet(g.globals.CSet(names), key.JSON())
	}
	conds := make([]ir.BoolExpr, len(props))
	for i, p := range props {
		conds[i] = L.Cmp(key.Expr(), model.Eq, ir.Expr(L.Str(p.Name)))
	}
	return L.Or(conds...)
}

func (g *generator) array(n *model.Node, loc string) (ir.Block, error) {
	L := g.lang
	val, path := ir.Val.JSON(), ir.Path.Path()

	code := g.guard(L.IsA(val, ir.Array, false), "expecting array", path)
	if len(n.Constraints) > 0 {
		code = ir.Concat(code, g.guard(g.lenBounds(L.AnyLen(val), n.Constraints),
			"invalid array length, expecting"+constraintText(n.Constraints), path))
	}

	head := len(n.Prefix)
	if head > 0 {
		enough := L.Cmp(ir.Expr(L.AnyLen(val)), model.Ge, L.Num(float64(head)))
		code = ir.Concat(code, g.guard(enough, fmt.Sprintf("expecting at least %d items", head), path))
	}
	for i, p := range n.Prefix {
		idx := ir.IntExpr(L.Num(float64(i)))
		ipath := L.PathVal(path, ir.Expr(idx), true)
		c, err := g.check(p, L.ArrItem(val, idx), ipath, fmt.Sprintf("%s[%d]", loc, i))
		if err != nil {
			return nil, err
		}
		code = ir.Concat(code, g.verify(c, ipath))
	}

	if n.Items != nil && n.Items.Kind != model.KindAny {
		ipath := L.PathVal(path, varIdx.Expr(), true)
		if head == 0 {
			c, err := g.check(n.Items, varItem.JSON(), ipath, loc+"[*]")
			if err != nil {
				return nil, err
			}
			if !c.trivial {
				idx := varIdx
				if !g.reportsPath(c) {
					idx = ""
				}
				code = ir.Concat(code, L.ArrLoop(val, idx, varItem, g.verify(c, ipath)))
			}
		} else {
			c, err := g.check(n.Items, L.ArrItem(val, varIdx.Int()), ipath, loc+"[*]")
			if err != nil {
				return nil, err
			}
			start := ir.IntExpr(L.Num(float64(head)))
			code = ir.Concat(code, L.IntLoop(varIdx, start, L.AnyLen(val), g.verify(c, ipath)))
		}
	}
	return ir.Concat(code, L.Return(L.True())), nil
}

func (g *generator) alternation(n *model.Node, loc string) (ir.Block, error) {
	if t, ok := g.opt.Discriminator(n.Alternatives, n.Discriminator); ok {
		return g.tagged(n, t, loc)
	}

	L := g.lang
	val, path := ir.Val.JSON(), ir.Path.Path()
	checks := make([]check, len(n.Alternatives))
	named := false
	for i, alt := range n.Alternatives {
		c, err := g.check(alt, val, path, fmt.Sprintf("%s|%d", loc, i))
		if err != nil {
			return nil, err
		}
		if c.trivial {
			return L.Return(L.True()), nil
		}
		named = named || c.msg == ""
		checks[i] = c
	}

	// Diagnostics of rejected alternatives are rolled back.
	rollback := named && L.IsReporting()
	var code ir.Block
	if rollback {
		code = L.ReportMark(varMark)
	}
	for _, c := range checks {
		code = ir.Concat(code, L.IfStmt(c.expr, L.Return(L.True()), nil))
		if rollback && c.msg == "" {
			code = ir.Concat(code, L.CleanReport(varMark))
		}
	}
	return ir.Concat(code, g.failure(noMatch, path)), nil
}

// tagged dispatches on the discriminating property; only the selected
// alternative runs, so its diagnostics are kept.
func (g *generator) tagged(n *model.Node, t *optimizer.Tagged, loc string) (ir.Block, error) {
	L := g.lang
	val, path := ir.Val.JSON(), ir.Path.Path()

	funs := make([]string, len(n.Alternatives))
	ntags := 0
	for i, alt := range n.Alternatives {
		fun, err := g.named(alt, fmt.Sprintf("%s|%d", loc, i))
		if err != nil {
			return nil, err
		}
		funs[i] = fun
		ntags += len(t.Tags[i])
	}

	var dispatch ir.Block
	if g.opt.Dispatch(ntags) == optimizer.UseTable {
		var cm ir.ConstMap
		for i, tags := range t.Tags {
			for _, c := range tags {
				cm = append(cm, ir.ConstEntry{Const: c, Fun: funs[i]})
			}
		}
		table := g.globals.CMap(cm)
		dispatch = ir.Concat(
			L.Decl(varFun, ir.VarChecker, L.GetCMap(table, varTag.JSON())),
			L.IfStmt(L.IsDef(varFun), L.Return(L.CallFun(varFun.Expr(), val, path)), nil),
		)
	} else {
		branches := make([]ir.Branch, len(t.Tags))
		for i, tags := range t.Tags {
			conds := make([]ir.BoolExpr, len(tags))
			for j, c := range tags {
				conds[j] = L.EqConst(varTag.JSON(), c)
			}
			branches[i] = ir.Branch{
				Cond: L.Or(conds...),
				Body: L.Return(L.CallFun(ir.Expr(funs[i]), val, path)),
			}
		}
		dispatch = L.MIfStmt(branches, nil)
	}

	code := L.IfStmt(L.HasProp(val, t.Prop), ir.Concat(
		L.Decl(varTag, ir.VarJSON, ir.Expr(L.ObjPropVal(val, t.Prop))),
		dispatch,
	), nil)
	return ir.Concat(code, g.failure(noMatch, path)), nil
}
