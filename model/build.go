package model

// Null returns a node accepting only null.
func Null() *Node { return &Node{Kind: KindNull} }

// Bool returns a node accepting true and false.
func Bool() *Node { return &Node{Kind: KindBool} }

// Int returns a node accepting integers.
func Int() *Node { return &Node{Kind: KindInt} }

// Float returns a node accepting numbers written with a fraction or exponent.
func Float() *Node { return &Node{Kind: KindFloat} }

// Number returns a node accepting any number.
func Number() *Node { return &Node{Kind: KindNumber} }

// String returns a node accepting any string.
func String() *Node { return &Node{Kind: KindString} }

// Regex returns a string node restricted by a pattern.
func Regex(regex, flags string) *Node {
	return &Node{Kind: KindString, Pattern: &Pattern{Regex: regex, Flags: flags}}
}

// Any returns a node accepting every value.
func Any() *Node { return &Node{Kind: KindAny} }

// Fmt returns a node accepting strings of a predefined format.
func Fmt(f Format) *Node { return &Node{Kind: KindFormat, Format: f} }

// Array returns a node accepting arrays whose elements match items.
// A nil items accepts any element.
func Array(items *Node) *Node { return &Node{Kind: KindArray, Items: items} }

// Tuple returns an array node with a fixed head and optional trailing items.
func Tuple(items *Node, prefix ...*Node) *Node {
	return &Node{Kind: KindArray, Items: items, Prefix: prefix}
}

// Object returns an open object node with the given properties.
func Object(props ...Property) *Node {
	return &Node{Kind: KindObject, Properties: props}
}

// Prop returns a mandatory property.
func Prop(name string, n *Node) Property {
	return Property{Name: name, Node: n, Required: true}
}

// Opt returns an optional property.
func Opt(name string, n *Node) Property {
	return Property{Name: name, Node: n}
}

// OneOf returns an alternation of the given branches.
func OneOf(alts ...*Node) *Node {
	return &Node{Kind: KindAlternation, Alternatives: alts}
}

// Enum returns a node accepting one of the given scalars.
func Enum(values ...any) *Node {
	return &Node{Kind: KindEnum, Values: values}
}

// Ref returns a reference to a Model.Defs entry.
func Ref(name string) *Node { return &Node{Kind: KindReference, Ref: name} }

// Constrain appends a constraint and returns n.
func (n *Node) Constrain(op Op, limit float64) *Node {
	n.Constraints = append(n.Constraints, Constraint{Op: op, Limit: limit})
	return n
}

// Close marks an object node as rejecting unknown properties and returns n.
func (n *Node) Close() *Node {
	n.Closed = true
	return n
}

// Relax sets Loose and returns n.
func (n *Node) Relax() *Node {
	n.Loose = true
	return n
}

// Describe sets Doc and returns n.
func (n *Node) Describe(doc string) *Node {
	n.Doc = doc
	return n
}
