// Package jsonmodel compiles JSON models into validator source code.
//
// A generation starts from a model or a schema file and ends with a terminal
// call:
//
//	res, err := jsonmodel.FromFile("person.schema.json").
//	    Language("go").
//	    Package("person").
//	    ToFile("person/check.go")
//
// The generated Go code imports the runtime/jsonmodel support package.
package jsonmodel

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/broady/jsonmodel/compiler"
	"github.com/broady/jsonmodel/language"
	_ "github.com/broady/jsonmodel/language/golang"
	_ "github.com/broady/jsonmodel/language/javascript"
	"github.com/broady/jsonmodel/model"
	"github.com/broady/jsonmodel/optimizer"
	"github.com/broady/jsonmodel/provider"
	"github.com/broady/jsonmodel/sink"
)

// Generator configures one generation through method chaining.
type Generator struct {
	model    *model.Model
	path     string
	provider provider.Provider
	cfg      Config
}

// GenerateResult is the outcome of a generation.
type GenerateResult struct {
	// Model is the model name.
	Model string

	// Language is the backend that produced Code.
	Language string

	Code  []byte
	Stats compiler.Stats
}

// FromModel starts a generation from a resolved model.
func FromModel(m *model.Model) *Generator {
	return &Generator{model: m}
}

// FromFile starts a generation from a JSON or YAML schema file, read with the
// JSON Schema provider unless Provider says otherwise.
func FromFile(path string) *Generator {
	return &Generator{path: path}
}

// FromConfig starts from a complete configuration.
func (g *Generator) FromConfig(cfg Config) *Generator {
	g.cfg = cfg
	return g
}

// Language selects the backend: "go" (default) or "js".
func (g *Generator) Language(name string) *Generator {
	g.cfg.Language = name
	return g
}

// Name sets the entry function name.
func (g *Generator) Name(name string) *Generator {
	g.cfg.Name = name
	return g
}

// Package sets the generated package or module name.
func (g *Generator) Package(pkg string) *Generator {
	g.cfg.Package = pkg
	return g
}

// WithMain adds a command line driver to the output.
func (g *Generator) WithMain() *Generator {
	g.cfg.Main = true
	return g
}

// Dispatch selects "auto", "table" or "chain" dispatch.
func (g *Generator) Dispatch(mode string) *Generator {
	g.cfg.Dispatch = mode
	return g
}

// MinTableSize sets the auto dispatch threshold.
func (g *Generator) MinTableSize(n int) *Generator {
	g.cfg.MinTableSize = n
	return g
}

// Options appends backend "key=value" options.
func (g *Generator) Options(pairs ...string) *Generator {
	g.cfg.Options = append(g.cfg.Options, pairs...)
	return g
}

// Logger sets the logger of the compiler.
func (g *Generator) Logger(l *slog.Logger) *Generator {
	g.cfg.Logger = l
	return g
}

// Provider sets how FromFile reads its schema.
func (g *Generator) Provider(p provider.Provider) *Generator {
	g.provider = p
	return g
}

// Generate compiles in memory.
func (g *Generator) Generate() (*GenerateResult, error) {
	cfg := applyConfigDefaults(&g.cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := g.load()
	if err != nil {
		return nil, err
	}

	opts, err := language.ParseOptions(cfg.Options, language.DefaultOptions())
	if err != nil {
		return nil, model.Errorf(model.CodeUnsupportedConfig, "%v", err)
	}
	lang, err := language.New(cfg.Language, opts)
	if err != nil {
		return nil, err
	}
	mode, err := optimizer.ParseMode(cfg.Dispatch)
	if err != nil {
		return nil, err
	}

	res, err := compiler.New(lang, compiler.Options{
		Name:         cfg.Name,
		Package:      cfg.Package,
		Main:         cfg.Main,
		Dispatch:     mode,
		MinTableSize: cfg.MinTableSize,
		Logger:       cfg.Logger,
	}).Compile(m)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{
		Model:    m.Name,
		Language: lang.Name(),
		Code:     res.Code,
		Stats:    res.Stats,
	}, nil
}

// ToSink compiles and writes the code to path within s.
func (g *Generator) ToSink(ctx context.Context, s sink.OutputSink, path string) (*GenerateResult, error) {
	res, err := g.Generate()
	if err != nil {
		return nil, err
	}
	if err := s.WriteFile(ctx, path, res.Code); err != nil {
		return nil, fmt.Errorf("write generated code: %w", err)
	}
	return res, nil
}

// ToFile compiles and atomically writes the code to a file, creating its
// directory as needed. An empty path uses Config.OutFile.
func (g *Generator) ToFile(path string) (*GenerateResult, error) {
	if path == "" {
		path = g.cfg.OutFile
	}
	if path == "" {
		return nil, model.Errorf(model.CodeUnsupportedConfig, "no output file")
	}
	dir, file := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return g.ToSink(context.Background(), sink.NewFilesystemSink(dir), file)
}

func (g *Generator) load() (*model.Model, error) {
	if g.model != nil {
		return g.model, nil
	}
	if g.path == "" {
		return nil, model.Errorf(model.CodeMalformedModel, "no model")
	}
	p := g.provider
	if p == nil {
		p = provider.JSONSchema{Logger: g.cfg.Logger}
	}
	return p.LoadFile(g.path)
}
