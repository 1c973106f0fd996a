package jsonmodel

import (
	"strconv"
	"strings"
	"unicode"
)

// Checker is the uniform signature of every generated checker function.
type Checker func(val any, path *Path, rep *Report) bool

// Path is the location of a value inside the validated document.
//
// It is a persistent linked list: extending a path allocates a new node and never
// touches the parent, so a child frame cannot alter the path of its caller.
// The root path has no segment. A nil *Path means path tracking is off; every
// function below keeps a nil path nil.
type Path struct {
	parent  *Path
	name    string
	index   int
	isIndex bool
	depth   int
}

// RootPath returns the path of the document root.
func RootPath() *Path {
	return &Path{}
}

// Len returns the number of segments.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// Segments decodes the path into property names (string) and array indexes
// (int), from the root down. The root decodes to an empty, non-nil slice.
func (p *Path) Segments() []any {
	if p == nil {
		return nil
	}
	segs := make([]any, p.depth)
	for cur := p; cur.depth > 0; cur = cur.parent {
		if cur.isIndex {
			segs[cur.depth-1] = cur.index
		} else {
			segs[cur.depth-1] = cur.name
		}
	}
	return segs
}

// String renders the path as "$", "$.users[0].name" or `$["odd key"]`.
func (p *Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range p.Segments() {
		switch s := seg.(type) {
		case int:
			b.WriteString("[")
			b.WriteString(strconv.Itoa(s))
			b.WriteString("]")
		case string:
			if isPlainName(s) {
				b.WriteString(".")
				b.WriteString(s)
			} else {
				b.WriteString("[")
				b.WriteString(strconv.Quote(s))
				b.WriteString("]")
			}
		}
	}
	return b.String()
}

func isPlainName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// Entry is one diagnostic of a Report.
type Entry struct {
	Message string
	Path    *Path
}

func (e Entry) String() string {
	return e.Path.String() + ": " + e.Message
}

// Report collects validation errors for one top-level call.
// All methods accept a nil receiver, which behaves as a disabled report.
type Report struct {
	entries []Entry
}

// Add appends a diagnostic.
func (r *Report) Add(msg string, path *Path) {
	if r == nil {
		return
	}
	r.entries = append(r.entries, Entry{Message: msg, Path: path})
}

// Len returns the number of diagnostics, usable as a mark for Truncate.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Truncate drops every diagnostic added after mark n.
func (r *Report) Truncate(n int) {
	if r == nil || n < 0 || n >= len(r.entries) {
		return
	}
	clear(r.entries[n:])
	r.entries = r.entries[:n]
}

// Entries returns a copy of the diagnostics in insertion order.
func (r *Report) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Report) HasErrors() bool {
	return r.Len() > 0
}

// Errors renders every diagnostic as "path: message".
func (r *Report) Errors() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.String()
	}
	return out
}
