// Package runner executes generated validators on JSON documents.
//
// Go code is built as a throwaway module that requires the jsonmodel runtime
// from a local checkout. JavaScript code runs under node.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModulePath is the module providing the runtime of generated Go code.
const ModulePath = "github.com/broady/jsonmodel"

// Options configures a run.
type Options struct {
	// Language is "go" or "js".
	Language string

	// Code is a generated validator with its main driver.
	Code []byte

	// ModuleRoot is a checkout of ModulePath. Only used for Go.
	ModuleRoot string

	// Test runs the input as a suite of [expected, value] pairs.
	Test bool
}

// Result is the outcome of one run.
type Result struct {
	// Output is the combined stdout and stderr of the validator.
	Output []byte

	// Passed reports exit status 0: the document is valid, or every test
	// case passed.
	Passed bool
}

// Exec runs the validator on input. A nonzero exit is a failed run, not an
// error; errors are reserved for runs that could not happen.
func Exec(ctx context.Context, opts Options, input []byte) (*Result, error) {
	tmpDir, err := os.MkdirTemp("", "jmc-run-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	inputFile := filepath.Join(tmpDir, "input.json")
	if err := os.WriteFile(inputFile, input, 0644); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	var cmd *exec.Cmd
	switch opts.Language {
	case "go":
		if err := writeGoModule(tmpDir, opts); err != nil {
			return nil, err
		}
		args := []string{"run", "-mod=mod", "."}
		if opts.Test {
			args = append(args, "-t")
		}
		cmd = exec.CommandContext(ctx, "go", append(args, inputFile)...)
		cmd.Env = append(os.Environ(), "GOWORK=off", "GOFLAGS=")
	case "js":
		script := filepath.Join(tmpDir, "check.js")
		if err := os.WriteFile(script, opts.Code, 0644); err != nil {
			return nil, fmt.Errorf("write script: %w", err)
		}
		args := []string{script}
		if opts.Test {
			args = append(args, "-t")
		}
		cmd = exec.CommandContext(ctx, "node", append(args, inputFile)...)
	default:
		return nil, fmt.Errorf("no runner for language %q", opts.Language)
	}
	cmd.Dir = tmpDir

	output, err := cmd.CombinedOutput()
	if err == nil {
		return &Result{Output: output, Passed: true}, nil
	}
	var exitErr *exec.ExitError
	// The drivers exit with 1 on invalid input; anything else is a crash
	// or a build failure.
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && !buildFailed(output) {
		return &Result{Output: output}, nil
	}
	return &Result{Output: output}, fmt.Errorf("run %s validator: %w\n%s", opts.Language, err, output)
}

// buildFailed reports compiler or go command diagnostics in output.
func buildFailed(output []byte) bool {
	for _, line := range bytes.Split(output, []byte("\n")) {
		switch {
		case bytes.HasPrefix(line, []byte("# ")):
			return true
		case bytes.HasPrefix(line, []byte("go: ")) && !bytes.HasPrefix(line, []byte("go: downloading")):
			return true
		}
	}
	return false
}

// writeGoModule lays out a main module holding the generated code.
func writeGoModule(dir string, opts Options) error {
	if opts.ModuleRoot == "" {
		return fmt.Errorf("go runner needs the %s module root", ModulePath)
	}
	root, err := filepath.Abs(opts.ModuleRoot)
	if err != nil {
		return err
	}
	gomod, err := GoMod(root)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), gomod, 0644); err != nil {
		return fmt.Errorf("write go.mod: %w", err)
	}
	// Reusing the checksums of the checkout keeps the build offline when the
	// module cache is warm.
	if sum, err := os.ReadFile(filepath.Join(root, "go.sum")); err == nil {
		if err := os.WriteFile(filepath.Join(dir, "go.sum"), sum, 0644); err != nil {
			return fmt.Errorf("write go.sum: %w", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "main.go"), opts.Code, 0644); err != nil {
		return fmt.Errorf("write main.go: %w", err)
	}
	return nil
}

// GoMod returns the go.mod of a module that requires ModulePath from the
// checkout at root, at the same Go version.
func GoMod(root string) ([]byte, error) {
	path := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module root: %w", err)
	}
	src, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if src.Module == nil || src.Module.Mod.Path != ModulePath {
		return nil, fmt.Errorf("%s is not the %s module", root, ModulePath)
	}

	f := &modfile.File{}
	if err := f.AddModuleStmt("jmcrun"); err != nil {
		return nil, err
	}
	if src.Go != nil {
		if err := f.AddGoStmt(src.Go.Version); err != nil {
			return nil, err
		}
	}
	if err := f.AddRequire(ModulePath, "v0.0.0"); err != nil {
		return nil, err
	}
	if err := f.AddReplace(ModulePath, "", root, ""); err != nil {
		return nil, err
	}
	return f.Format()
}

// FindModuleRoot walks up from dir to the checkout of ModulePath.
func FindModuleRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil && modfile.ModulePath(data) == ModulePath {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s module not found", ModulePath)
		}
		dir = parent
	}
}
