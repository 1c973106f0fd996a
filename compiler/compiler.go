// Package compiler turns a resolved model into validator source code for a
// registered language backend.
//
// The compiler drives the backend exclusively through the language.Language
// contract; it never inspects the fragments it gets back.
package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/broady/jsonmodel/language"
	"github.com/broady/jsonmodel/model"
	"github.com/broady/jsonmodel/optimizer"
)

// DefaultName is the entry function name used when Options.Name is empty.
const DefaultName = "check_model"

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options configures a compilation.
type Options struct {
	// Name is the entry function of the generated code.
	Name string

	// Package is the package or module name of the generated code.
	Package string

	// Main adds a command line driver.
	Main bool

	// Dispatch selects tables or chains for constant-keyed branches.
	Dispatch optimizer.Mode

	// MinTableSize is the Auto threshold; zero uses the optimizer default.
	MinTableSize int

	// Logger receives progress logs. Nil discards them.
	Logger *slog.Logger
}

// Stats describes the generated code.
type Stats struct {
	Checkers  int
	Inlined   int
	DedupHits int
	Regexes   int
	Tables    int
	Chains    int
	Entries   int
}

// Result is the output of a successful compilation.
type Result struct {
	Code  []byte
	Stats Stats
}

// Compiler compiles models for one backend.
type Compiler struct {
	lang language.Language
	opts Options
	log  *slog.Logger
}

// New returns a Compiler emitting code through lang.
func New(lang language.Language, opts Options) *Compiler {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Compiler{lang: lang, opts: opts, log: log.With("lang", lang.Name())}
}

// Compile validates m and generates its validator. Model errors carry
// model.CodeMalformedModel, bad options model.CodeUnsupportedConfig and broken
// invariants model.CodeInternal.
func (c *Compiler) Compile(m *model.Model) (res *Result, err error) {
	if !identifierRE.MatchString(c.opts.Name) {
		return nil, model.Errorf(model.CodeUnsupportedConfig, "invalid entry name %q", c.opts.Name)
	}
	if c.opts.MinTableSize < 0 {
		return nil, model.Errorf(model.CodeUnsupportedConfig, "negative table threshold %d", c.opts.MinTableSize)
	}
	if m == nil {
		return nil, model.Errorf(model.CodeMalformedModel, "nil model")
	}
	if errs := m.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = model.Errorf(model.CodeInternal, "%s backend: %v", c.lang.Name(), r)
		}
	}()

	g := newGenerator(c.lang, m, c.opts, c.log)
	file, err := g.generate()
	if err != nil {
		return nil, err
	}

	code := c.lang.GenCode(c.lang.GenFullCode(file), c.opts.Name, c.opts.Package)
	if f, ok := c.lang.(language.Formatter); ok {
		formatted, err := f.Format(code)
		if err != nil {
			return nil, model.Errorf(model.CodeInternal, "%v", err)
		}
		code = formatted
	}

	stats := g.statistics()
	c.log.Info("compiled model",
		"model", m.Name,
		"checkers", stats.Checkers,
		"inlined", stats.Inlined,
		"dedup", stats.DedupHits,
		"tables", stats.Tables,
		"chains", stats.Chains,
		"bytes", len(code))
	return &Result{Code: code, Stats: stats}, nil
}

func (s Stats) String() string {
	return fmt.Sprintf("checkers=%d inlined=%d dedup=%d regexes=%d tables=%d chains=%d entries=%d",
		s.Checkers, s.Inlined, s.DedupHits, s.Regexes, s.Tables, s.Chains, s.Entries)
}
