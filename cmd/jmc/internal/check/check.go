package check

import (
	"fmt"
	"log/slog"

	"github.com/broady/jsonmodel/provider"
)

type Cmd struct {
	Schema string `arg:"" type:"existingfile" help:"JSON or YAML schema file."`
	Strict bool   `help:"Reject unknown keywords, formats and approximated constructs."`
}

func (c *Cmd) Run(logger *slog.Logger) error {
	m, err := provider.JSONSchema{Strict: c.Strict, Logger: logger}.LoadFile(c.Schema)
	if err != nil {
		return err
	}
	logger.Debug("loaded schema", "path", c.Schema, "model", m.Name)

	fmt.Printf("✓ Loaded model %q\n", m.Name)
	fmt.Printf("✓ %d definitions\n", len(m.Defs))
	fmt.Println("✓ Model is well formed")
	return nil
}
