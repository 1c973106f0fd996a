package jsonmodel

import (
	"reflect"
	"testing"
)

func TestPathString(t *testing.T) {
	var p *Path
	if s := p.String(); s != "$" {
		t.Errorf("expected '$', got '%s'", s)
	}

	root := RootPath()
	if s := root.String(); s != "$" {
		t.Errorf("expected '$', got '%s'", s)
	}

	p1 := ExtendPath(root, "users")
	if s := p1.String(); s != "$.users" {
		t.Errorf("expected '$.users', got '%s'", s)
	}

	p2 := ExtendPathIndex(p1, 0)
	if s := p2.String(); s != "$.users[0]" {
		t.Errorf("expected '$.users[0]', got '%s'", s)
	}

	p3 := ExtendPath(p2, "name")
	if s := p3.String(); s != "$.users[0].name" {
		t.Errorf("expected '$.users[0].name', got '%s'", s)
	}

	p4 := ExtendPath(root, "odd key")
	if s := p4.String(); s != `$["odd key"]` {
		t.Errorf(`expected '$["odd key"]', got '%s'`, s)
	}
}

func TestPathSegments(t *testing.T) {
	p := ExtendPathIndex(ExtendPath(RootPath(), "a"), 2)
	if got, want := p.Segments(), []any{"a", 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("Segments() = %#v, want %#v", got, want)
	}
	if got := RootPath().Segments(); got == nil || len(got) != 0 {
		t.Errorf("root Segments() = %#v, want empty non-nil slice", got)
	}
	if got := (*Path)(nil).Segments(); got != nil {
		t.Errorf("nil Segments() = %#v, want nil", got)
	}
}

func TestPathIsPersistent(t *testing.T) {
	parent := ExtendPath(RootPath(), "a")
	left := ExtendPath(parent, "left")
	right := ExtendPathIndex(parent, 1)

	if parent.String() != "$.a" {
		t.Errorf("parent mutated: %s", parent)
	}
	if left.String() != "$.a.left" || right.String() != "$.a[1]" {
		t.Errorf("siblings mixed up: %s %s", left, right)
	}
}

func TestReport(t *testing.T) {
	r := &Report{}
	if r.HasErrors() {
		t.Error("new report should be empty")
	}

	p := ExtendPath(RootPath(), "age")
	r.Add("must be positive", p)

	if !r.HasErrors() {
		t.Error("report should have errors after adding one")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 error, got %d", r.Len())
	}

	expected := "$.age: must be positive"
	if got := r.Errors()[0]; got != expected {
		t.Errorf("expected '%s', got '%s'", expected, got)
	}
}

func TestReportTruncate(t *testing.T) {
	r := &Report{}
	r.Add("kept", RootPath())
	mark := r.Len()
	r.Add("dropped 1", RootPath())
	r.Add("dropped 2", RootPath())
	r.Truncate(mark)

	entries := r.Entries()
	if len(entries) != 1 || entries[0].Message != "kept" {
		t.Errorf("Truncate kept %v", entries)
	}

	r.Truncate(5)
	if r.Len() != 1 {
		t.Errorf("Truncate past the end changed the report: %d", r.Len())
	}
}

func TestNilReport(t *testing.T) {
	var r *Report
	r.Add("ignored", RootPath())
	r.Truncate(0)
	if r.Len() != 0 || r.HasErrors() || r.Entries() != nil || r.Errors() != nil {
		t.Error("nil report should behave as disabled")
	}
}
