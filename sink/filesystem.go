package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemSink writes files below a root directory. Writes are atomic: the
// content goes to a temporary file that is then renamed or linked in place.
type FilesystemSink struct {
	Root string

	// Mode defaults to 0644.
	Mode os.FileMode

	// Overwrite replaces existing files; otherwise an existing file is an error.
	Overwrite bool
}

func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0o644, Overwrite: true}
}

func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(s.Root, filepath.FromSlash(path))
	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	absPath, err := filepath.Abs(full)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return fmt.Errorf("path escapes root directory: %q", path)
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}

	tmp, err := os.CreateTemp(dir, ".jmc-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	// Leftovers keep the .jmc-*.tmp prefix.
	discard := func() { _ = os.Remove(tmpPath) }

	_, werr := tmp.Write(content)
	cerr := tmp.Close()
	switch {
	case werr != nil:
		discard()
		return fmt.Errorf("write temp file: %w", werr)
	case cerr != nil:
		discard()
		return fmt.Errorf("close temp file: %w", cerr)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		discard()
		return fmt.Errorf("set file mode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		discard()
		return err
	}

	if s.Overwrite {
		if err := os.Rename(tmpPath, full); err != nil {
			discard()
			return fmt.Errorf("rename temp file: %w", err)
		}
		return nil
	}
	// Link fails with EEXIST instead of replacing the target.
	err = os.Link(tmpPath, full)
	discard()
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("file already exists: %q", path)
		}
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}
