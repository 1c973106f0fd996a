package compile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/jsonmodel/internal/logging"
	"github.com/broady/jsonmodel/internal/metrics"
)

const pointSchema = `{
  "title": "point",
  "type": "object",
  "properties": {"x": {"type": "integer"}, "y": {"type": "integer"}},
  "required": ["x", "y"]
}`

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "point.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileToFile(t *testing.T) {
	schema := writeSchema(t, pointSchema)
	out := filepath.Join(t.TempDir(), "point", "check.go")
	metricsFile := filepath.Join(t.TempDir(), "jmc.prom")

	cmd := &Cmd{
		Schema:      schema,
		Lang:        "go",
		Out:         out,
		Package:     "point",
		Dispatch:    "auto",
		MetricsFile: metricsFile,
	}
	require.NoError(t, cmd.run(context.Background(), logging.NewNop(), metrics.New()))

	code, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(code), "package point")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `jmc_compiles_total{language="go",status="ok"} 1`)
}

func TestCompileToStdout(t *testing.T) {
	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() { stdout = os.Stdout })

	cmd := &Cmd{Schema: writeSchema(t, pointSchema), Lang: "js", Name: "check_point", Dispatch: "chain"}
	require.NoError(t, cmd.run(context.Background(), logging.NewNop(), metrics.New()))
	assert.Contains(t, buf.String(), "function check_point(")
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  Cmd
		want string
	}{
		{"bad language", Cmd{Lang: "cobol", Dispatch: "auto"}, "unknown language"},
		{"bad option", Cmd{Lang: "go", Dispatch: "auto", Options: []string{"nope=1"}}, "unsupported_config"},
		{"bad name", Cmd{Lang: "go", Dispatch: "auto", Name: "a b"}, "is not an identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.cmd
			cmd.Schema = writeSchema(t, pointSchema)
			err := cmd.run(context.Background(), logging.NewNop(), metrics.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompileMalformedSchema(t *testing.T) {
	cmd := &Cmd{Schema: writeSchema(t, `{"$ref": "#/$defs/missing"}`), Lang: "go", Dispatch: "auto"}
	err := cmd.run(context.Background(), logging.NewNop(), metrics.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed_model")
}

func TestWatch(t *testing.T) {
	schema := writeSchema(t, pointSchema)
	out := filepath.Join(t.TempDir(), "check.js")
	cmd := &Cmd{Schema: schema, Lang: "js", Out: out, Dispatch: "auto", Watch: true}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.run(ctx, logging.NewNop(), metrics.New()) }()

	require.Eventually(t, func() bool {
		code, err := os.ReadFile(out)
		return err == nil && strings.Contains(string(code), `"y"`)
	}, 5*time.Second, 20*time.Millisecond)

	// Rewrite until the watcher picks the change up; the first write may
	// land before the watch is registered.
	renamed := strings.ReplaceAll(pointSchema, `"y"`, `"z"`)
	require.Eventually(t, func() bool {
		if err := os.WriteFile(schema, []byte(renamed), 0o644); err != nil {
			return false
		}
		time.Sleep(50 * time.Millisecond)
		code, err := os.ReadFile(out)
		return err == nil && strings.Contains(string(code), `"z"`)
	}, 10*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
