package optimizer

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/broady/jsonmodel/model"
)

// Fingerprint returns a structural hash of n: kind, constraints and the
// fingerprints of its children. References hash by name, so recursive models
// fingerprint in finite time. Results are memoized per node.
func (o *Optimizer) Fingerprint(n *model.Node) uint64 {
	if n == nil {
		return 0
	}
	if fp, ok := o.fingerprints[n]; ok {
		return fp
	}

	var buf []byte
	putInt := func(i int) { buf = binary.LittleEndian.AppendUint64(buf, uint64(i)) }
	putFloat := func(f float64) { buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f)) }
	putStr := func(s string) {
		putInt(len(s))
		buf = append(buf, s...)
	}
	putBool := func(b bool) {
		if b {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	putChild := func(c *model.Node) { buf = binary.LittleEndian.AppendUint64(buf, o.Fingerprint(c)) }

	putInt(int(n.Kind))
	putBool(n.Loose)
	putBool(n.Closed)
	putStr(string(n.Format))
	putStr(n.Ref)
	putStr(n.Discriminator)

	putInt(len(n.Constraints))
	for _, c := range n.Constraints {
		putInt(int(c.Op))
		putFloat(c.Limit)
	}

	putBool(n.Pattern != nil)
	if n.Pattern != nil {
		putStr(n.Pattern.Regex)
		putStr(n.Pattern.Flags)
	}

	putInt(len(n.Values))
	for _, v := range n.Values {
		putValue(&buf, model.ScalarKey(v))
	}

	putChild(n.Items)
	putInt(len(n.Prefix))
	for _, p := range n.Prefix {
		putChild(p)
	}

	putInt(len(n.Properties))
	for _, p := range n.Properties {
		putStr(p.Name)
		putBool(p.Required)
		putChild(p.Node)
	}
	putChild(n.Additional)

	putInt(len(n.Alternatives))
	for _, a := range n.Alternatives {
		putChild(a)
	}

	fp := xxhash.Sum64(buf)
	o.fingerprints[n] = fp
	return fp
}

// putValue appends a type-tagged scalar so that "1" and 1 differ.
func putValue(buf *[]byte, v any) {
	switch t := v.(type) {
	case nil:
		*buf = append(*buf, 'n')
	case bool:
		if t {
			*buf = append(*buf, 't')
		} else {
			*buf = append(*buf, 'f')
		}
	case int64:
		*buf = append(*buf, 'i')
		*buf = binary.LittleEndian.AppendUint64(*buf, uint64(t))
	case float64:
		*buf = append(*buf, 'd')
		*buf = binary.LittleEndian.AppendUint64(*buf, math.Float64bits(t))
	case string:
		*buf = append(*buf, 's')
		*buf = binary.LittleEndian.AppendUint64(*buf, uint64(len(t)))
		*buf = append(*buf, t...)
	}
}
