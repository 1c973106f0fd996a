package compiler

import (
	"math"
	"strings"

	"github.com/broady/jsonmodel/ir"
	"github.com/broady/jsonmodel/model"
	"github.com/broady/jsonmodel/optimizer"
)

// maxExact bounds the integers a float64 limit represents exactly.
const maxExact = 1 << 53

// inline builds the expression checking a scalar node.
func (g *generator) inline(n *model.Node, v ir.JSONExpr, path ir.PathExpr) check {
	L := g.lang
	var expr ir.BoolExpr
	switch n.Kind {
	case model.KindAny:
		return check{expr: L.True(), trivial: true}
	case model.KindNull:
		expr = L.IsA(v, ir.Null, false)
	case model.KindBool:
		expr = L.IsA(v, ir.Bool, false)
	case model.KindInt:
		expr = L.And(L.IsA(v, ir.Int, n.Loose), g.numBounds(v, n))
	case model.KindFloat:
		expr = L.And(L.IsA(v, ir.Float, n.Loose), g.numBounds(v, n))
	case model.KindNumber:
		expr = L.And(L.IsNum(v), g.numBounds(v, n))
	case model.KindString:
		expr = L.And(L.IsA(v, ir.String, false), g.lenBounds(L.StrLen(v), n.Constraints))
		if n.Pattern != nil {
			re := g.globals.Regex(*n.Pattern)
			expr = L.And(expr, L.MatchRe(re, ir.StrExpr(L.Value(v, ir.String))))
		}
	case model.KindFormat:
		expr = L.And(L.Predef(v, n.Format, path, false), g.lenBounds(L.StrLen(v), n.Constraints))
	case model.KindEnum:
		expr = g.enum(v, n)
	default:
		panic("compiler: cannot inline a " + n.Kind.String() + " node")
	}
	return check{expr: expr, msg: "expecting " + describe(n)}
}

func (g *generator) enum(v ir.JSONExpr, n *model.Node) ir.BoolExpr {
	L := g.lang
	consts, err := ir.ConstListOf(n.Values)
	if err != nil {
		// Validate rejects non-scalar values.
		panic("compiler: " + err.Error())
	}
	if g.opt.Dispatch(len(consts)) == optimizer.UseTable {
		return L.And(L.IsScalar(v), L.InCSet(g.globals.CSet(consts), v))
	}
	conds := make([]ir.BoolExpr, len(consts))
	for i, c := range consts {
		conds[i] = L.EqConst(v, c)
	}
	return L.Or(conds...)
}

// numBounds checks the constraints of a numeric node. Int values compare as
// integers when the limit allows it, so no float rounding is involved.
func (g *generator) numBounds(v ir.JSONExpr, n *model.Node) ir.BoolExpr {
	L := g.lang
	conds := make([]ir.BoolExpr, 0, len(n.Constraints))
	for _, c := range n.Constraints {
		switch {
		case math.IsInf(c.Limit, 0):
			conds = append(conds, g.fold(c.Op, c.Limit > 0))
		case n.Kind == model.KindInt && math.Abs(c.Limit) < maxExact:
			conds = append(conds, g.intBound(L.Value(v, ir.Int), c))
		default:
			conds = append(conds, L.Cmp(L.Value(v, ir.Float), c.Op, L.Num(c.Limit)))
		}
	}
	return L.And(conds...)
}

// lenBounds checks constraints on a length or a count.
func (g *generator) lenBounds(q ir.IntExpr, cs []model.Constraint) ir.BoolExpr {
	conds := make([]ir.BoolExpr, 0, len(cs))
	for _, c := range cs {
		if math.Abs(c.Limit) >= maxExact {
			conds = append(conds, g.fold(c.Op, c.Limit > 0))
			continue
		}
		conds = append(conds, g.intBound(ir.Expr(q), c))
	}
	return g.lang.And(conds...)
}

// intBound compares an integer quantity. A fractional limit is rounded
// toward the accepted side; equality with it never holds.
func (g *generator) intBound(q ir.Expr, c model.Constraint) ir.BoolExpr {
	L := g.lang
	op, limit := c.Op, c.Limit
	if limit != math.Trunc(limit) {
		switch op {
		case model.Eq:
			return L.False()
		case model.Ne:
			return L.True()
		case model.Ge, model.Gt:
			op, limit = model.Ge, math.Ceil(limit)
		case model.Le, model.Lt:
			op, limit = model.Le, math.Floor(limit)
		}
	}
	return L.Cmp(q, op, L.Num(limit))
}

// fold evaluates a comparison of any representable quantity with a limit
// beyond its range, above it when above is set.
func (g *generator) fold(op model.Op, above bool) ir.BoolExpr {
	var holds bool
	switch op {
	case model.Eq:
		holds = false
	case model.Ne:
		holds = true
	case model.Le, model.Lt:
		holds = above
	case model.Ge, model.Gt:
		holds = !above
	}
	if holds {
		return g.lang.True()
	}
	return g.lang.False()
}

// describe renders what a scalar node expects, e.g. "int >= 0" or "$UUID".
func describe(n *model.Node) string {
	var b strings.Builder
	if n.Loose {
		b.WriteString("loose ")
	}
	switch n.Kind {
	case model.KindFormat:
		b.WriteString(n.Format.String())
	case model.KindEnum:
		consts, _ := ir.ConstListOf(n.Values)
		parts := make([]string, len(consts))
		for i, c := range consts {
			parts[i] = c.String()
		}
		b.WriteString("one of [" + strings.Join(parts, ", ") + "]")
	default:
		b.WriteString(n.Kind.String())
	}
	b.WriteString(constraintText(n.Constraints))
	if n.Pattern != nil {
		b.WriteString(" matching " + n.Pattern.String())
	}
	return b.String()
}

func constraintText(cs []model.Constraint) string {
	var b strings.Builder
	for i, c := range cs {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(" " + c.String())
	}
	return b.String()
}
