// Package optimizer chooses between dispatch tables and conditional chains and
// deduplicates structurally identical checkers.
//
// An Optimizer belongs to a single compilation; it is not safe for concurrent use.
package optimizer

import (
	"fmt"
	"strings"

	"github.com/broady/jsonmodel/ir"
	"github.com/broady/jsonmodel/model"
)

// Mode selects how constant-keyed branches are emitted.
type Mode int

const (
	// Auto uses a table once the number of keys reaches MinTableSize.
	Auto Mode = iota
	// Table always uses a dispatch table.
	Table
	// Chain always uses an if/else-if chain in declaration order.
	Chain
)

// DefaultMinTableSize is the smallest key count dispatched through a table in
// Auto mode.
const DefaultMinTableSize = 3

func (m Mode) String() string {
	switch m {
	case Table:
		return "table"
	case Chain:
		return "chain"
	}
	return "auto"
}

// ParseMode accepts "auto", "table" and "chain". Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "table":
		return Table, nil
	case "chain":
		return Chain, nil
	}
	return Auto, model.Errorf(model.CodeUnsupportedConfig, "unknown dispatch mode %q", s)
}

// Strategy is the outcome of a dispatch decision.
type Strategy int

const (
	UseChain Strategy = iota
	UseTable
)

func (s Strategy) String() string {
	if s == UseTable {
		return "table"
	}
	return "chain"
}

// Options configures an Optimizer.
type Options struct {
	Mode Mode

	// MinTableSize overrides DefaultMinTableSize when positive.
	MinTableSize int
}

// Stats counts optimizer decisions.
type Stats struct {
	DedupHits int
	Tables    int
	Chains    int
}

type entry struct {
	node *model.Node
	name string
}

// Optimizer holds the fingerprint cache of one compilation.
type Optimizer struct {
	model *model.Model
	opts  Options
	stats Stats

	fingerprints map[*model.Node]uint64
	checkers     map[uint64]entry

	// hash is replaced in tests to force collisions.
	hash func(n *model.Node) uint64
}

// New returns an Optimizer for m.
func New(m *model.Model, opts Options) *Optimizer {
	if opts.MinTableSize <= 0 {
		opts.MinTableSize = DefaultMinTableSize
	}
	o := &Optimizer{
		model:        m,
		opts:         opts,
		fingerprints: map[*model.Node]uint64{},
		checkers:     map[uint64]entry{},
	}
	o.hash = o.Fingerprint
	return o
}

// Stats returns the decisions taken so far.
func (o *Optimizer) Stats() Stats { return o.stats }

// Dispatch decides how to emit n mutually exclusive constant-keyed branches.
// Keys are JSON scalars or property names, always hashable.
func (o *Optimizer) Dispatch(n int) Strategy {
	s := UseChain
	switch o.opts.Mode {
	case Table:
		s = UseTable
	case Auto:
		if n >= o.opts.MinTableSize {
			s = UseTable
		}
	}
	if s == UseTable {
		o.stats.Tables++
	} else {
		o.stats.Chains++
	}
	return s
}

// Lookup returns the checker registered for a node with the same fingerprint.
// A hit on a structurally different node is an internal error.
func (o *Optimizer) Lookup(n *model.Node) (string, bool, error) {
	e, ok := o.checkers[o.hash(n)]
	if !ok {
		return "", false, nil
	}
	if !model.Equal(e.node, n) {
		return "", false, model.Errorf(model.CodeInternal,
			"fingerprint collision between %s checker %s and a different %s node", e.node.Kind, e.name, n.Kind)
	}
	o.stats.DedupHits++
	return e.name, true, nil
}

// Register binds a node's fingerprint to a checker name. Later structurally
// identical nodes resolve to it through Lookup.
func (o *Optimizer) Register(n *model.Node, name string) {
	fp := o.hash(n)
	if _, dup := o.checkers[fp]; !dup {
		o.checkers[fp] = entry{node: n, name: name}
	}
}

// Tagged describes an alternation dispatched on a property value.
type Tagged struct {
	// Prop is the discriminating property, required by every alternative.
	Prop string

	// Tags lists the accepted constants of each alternative, in order.
	Tags []ir.ConstList
}

// Discriminator looks for a property every alternative requires with
// constant values that no two alternatives share. hint, when set, is the only
// candidate. Alternatives are resolved through references.
func (o *Optimizer) Discriminator(alts []*model.Node, hint string) (*Tagged, bool) {
	objs := make([]*model.Node, len(alts))
	for i, alt := range alts {
		obj := o.model.Resolve(alt)
		if obj == nil || obj.Kind != model.KindObject {
			return nil, false
		}
		objs[i] = obj
	}
	if len(objs) < 2 {
		return nil, false
	}

	var candidates []string
	if hint != "" {
		candidates = []string{hint}
	} else {
		for _, p := range objs[0].Properties {
			if p.Required {
				candidates = append(candidates, p.Name)
			}
		}
	}

	for _, prop := range candidates {
		if t, ok := o.tagsFor(objs, prop); ok {
			return t, true
		}
	}
	return nil, false
}

func (o *Optimizer) tagsFor(objs []*model.Node, prop string) (*Tagged, bool) {
	seen := map[any]bool{}
	t := &Tagged{Prop: prop, Tags: make([]ir.ConstList, len(objs))}
	for i, obj := range objs {
		values, ok := o.constantsOf(obj, prop)
		if !ok {
			return nil, false
		}
		for _, c := range values {
			if seen[c.Key()] {
				return nil, false
			}
			seen[c.Key()] = true
		}
		t.Tags[i] = values
	}
	return t, true
}

// constantsOf returns the constants a required property is restricted to.
func (o *Optimizer) constantsOf(obj *model.Node, prop string) (ir.ConstList, bool) {
	for _, p := range obj.Properties {
		if p.Name != prop || !p.Required {
			continue
		}
		n := o.model.Resolve(p.Node)
		if n == nil || n.Kind != model.KindEnum {
			return nil, false
		}
		values, err := ir.ConstListOf(n.Values)
		if err != nil || len(values) == 0 {
			return nil, false
		}
		return values, true
	}
	return nil, false
}

// String summarizes the statistics for logs.
func (s Stats) String() string {
	return fmt.Sprintf("dedup=%d tables=%d chains=%d", s.DedupHits, s.Tables, s.Chains)
}
