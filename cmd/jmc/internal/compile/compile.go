package compile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/broady/jsonmodel"
	"github.com/broady/jsonmodel/compiler"
	"github.com/broady/jsonmodel/internal/metrics"
	"github.com/broady/jsonmodel/provider"
	"github.com/broady/jsonmodel/sink"
)

// stdout receives the generated code when no output file is given.
var stdout io.Writer = os.Stdout

type Cmd struct {
	Schema       string   `arg:"" type:"existingfile" help:"JSON or YAML schema file."`
	Lang         string   `help:"Target language." short:"l" default:"go"`
	Out          string   `help:"Output file (default: stdout)." short:"o" type:"path"`
	Name         string   `help:"Entry function name." short:"n"`
	Package      string   `help:"Package or module name of the generated code." short:"p"`
	Main         bool     `help:"Add a command line driver."`
	Options      []string `help:"Backend option as key=value (repeatable)." short:"O" name:"option"`
	Dispatch     string   `help:"Property and tag dispatch." default:"auto" enum:"auto,table,chain"`
	MinTableSize int      `help:"Smallest key count dispatched through a table in auto mode."`
	Strict       bool     `help:"Reject unknown schema keywords, formats and approximated constructs."`
	Watch        bool     `help:"Watch the schema and recompile on change." short:"w"`
	MetricsFile  string   `help:"Write compile metrics in Prometheus text format." type:"path"`
}

func (c *Cmd) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return c.run(ctx, logger, metrics.New())
}

func (c *Cmd) run(ctx context.Context, logger *slog.Logger, m *metrics.Collector) error {
	if err := c.compile(ctx, logger, m); err != nil && !c.Watch {
		return err
	} else if err != nil {
		logger.Error("compile failed", "error", err)
	}
	if !c.Watch {
		return nil
	}
	return c.watch(ctx, logger, func() {
		if err := c.compile(ctx, logger, m); err != nil {
			logger.Error("recompile failed", "error", err)
		}
	})
}

func (c *Cmd) generator(logger *slog.Logger) *jsonmodel.Generator {
	g := jsonmodel.FromFile(c.Schema).
		Provider(provider.JSONSchema{Strict: c.Strict, Logger: logger}).
		Language(c.Lang).
		Name(c.Name).
		Package(c.Package).
		Dispatch(c.Dispatch).
		MinTableSize(c.MinTableSize).
		Options(c.Options...).
		Logger(logger)
	if c.Main {
		g = g.WithMain()
	}
	return g
}

func (c *Cmd) compile(ctx context.Context, logger *slog.Logger, m *metrics.Collector) error {
	start := time.Now()
	g := c.generator(logger)

	var (
		res *jsonmodel.GenerateResult
		err error
	)
	if c.Out == "" {
		res, err = g.ToSink(ctx, sink.NewWriterSink(stdout), "stdout")
	} else {
		res, err = g.ToFile(c.Out)
	}
	elapsed := time.Since(start)

	var stats *compiler.Stats
	if res != nil {
		stats = &res.Stats
	}
	m.Observe(c.Lang, elapsed, stats, err)
	if c.MetricsFile != "" {
		if werr := m.WriteTextfile(c.MetricsFile); werr != nil {
			logger.Warn("write metrics", "path", c.MetricsFile, "error", werr)
		}
	}
	if err != nil {
		return fmt.Errorf("compile %s: %w", c.Schema, err)
	}

	logger.Info("compiled schema",
		slog.String("schema", c.Schema),
		slog.String("lang", res.Language),
		slog.String("out", c.Out),
		slog.Duration("elapsed", elapsed),
		slog.String("stats", res.Stats.String()))
	return nil
}
