package compiler

import (
	"fmt"

	"github.com/broady/jsonmodel/ir"
	"github.com/broady/jsonmodel/language"
	"github.com/broady/jsonmodel/model"
)

// Globals accumulates the module-level state of generated code: compiled
// regexes and dispatch tables, with their declarations, init and teardown.
type Globals struct {
	lang language.Language

	decls ir.Block
	subs  ir.Block
	init  ir.Block
	free  ir.Block

	regexes  map[model.Pattern]string
	counters map[string]int
}

func newGlobals(lang language.Language) *Globals {
	return &Globals{
		lang:     lang,
		regexes:  map[model.Pattern]string{},
		counters: map[string]int{},
	}
}

func (gl *Globals) name(prefix string) string {
	n := gl.counters[prefix]
	gl.counters[prefix]++
	return fmt.Sprintf("%s_%d", prefix, n)
}

// Regex returns the matcher of p, declaring it on first use.
func (gl *Globals) Regex(p model.Pattern) string {
	if name, ok := gl.regexes[p]; ok {
		return name
	}
	name := gl.name("_jm_re")
	gl.regexes[p] = name
	gl.decls = ir.Concat(gl.decls, gl.lang.DefRe(name))
	gl.subs = ir.Concat(gl.subs, gl.lang.SubRe(name))
	gl.init = ir.Concat(gl.init, gl.lang.IniRe(name, p))
	return name
}

// CSet declares a constant set.
func (gl *Globals) CSet(consts ir.ConstList) string {
	name := gl.name("_jm_cst")
	gl.decls = ir.Concat(gl.decls, gl.lang.DefCSet(name))
	gl.init = ir.Concat(gl.init, gl.lang.IniCSet(name, consts))
	gl.free = ir.Concat(gl.free, gl.lang.Assign(ir.Var(name), gl.lang.Null()))
	return name
}

// PMap declares a property dispatch table.
func (gl *Globals) PMap(m ir.PropMap) string {
	name := gl.name("_jm_map")
	gl.decls = ir.Concat(gl.decls, gl.lang.DefPMap(name))
	gl.init = ir.Concat(gl.init, gl.lang.IniPMap(name, m))
	gl.free = ir.Concat(gl.free, gl.lang.Assign(ir.Var(name), gl.lang.Null()))
	return name
}

// CMap declares a constant dispatch table.
func (gl *Globals) CMap(m ir.ConstMap) string {
	name := gl.name("_jm_cmap")
	gl.decls = ir.Concat(gl.decls, gl.lang.DefCMap(name))
	gl.init = ir.Concat(gl.init, gl.lang.IniCMap(name, m))
	gl.free = ir.Concat(gl.free, gl.lang.DelCMap(name))
	return name
}

// Regexes returns the number of distinct patterns.
func (gl *Globals) Regexes() int { return len(gl.regexes) }
