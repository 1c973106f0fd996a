package model

// Equal reports whether a and b validate the same values by structure.
// References compare by name; docs are ignored.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind || a.Loose != b.Loose || a.Closed != b.Closed ||
		a.Format != b.Format || a.Ref != b.Ref || a.Discriminator != b.Discriminator {
		return false
	}
	if len(a.Constraints) != len(b.Constraints) {
		return false
	}
	for i := range a.Constraints {
		if a.Constraints[i] != b.Constraints[i] {
			return false
		}
	}
	if (a.Pattern == nil) != (b.Pattern == nil) || (a.Pattern != nil && *a.Pattern != *b.Pattern) {
		return false
	}
	if len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if ScalarKey(a.Values[i]) != ScalarKey(b.Values[i]) {
			return false
		}
	}
	if !Equal(a.Items, b.Items) || !Equal(a.Additional, b.Additional) {
		return false
	}
	if !equalNodes(a.Prefix, b.Prefix) || !equalNodes(a.Alternatives, b.Alternatives) {
		return false
	}
	if len(a.Properties) != len(b.Properties) {
		return false
	}
	for i, pa := range a.Properties {
		pb := b.Properties[i]
		if pa.Name != pb.Name || pa.Required != pb.Required || !Equal(pa.Node, pb.Node) {
			return false
		}
	}
	return true
}

func equalNodes(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
