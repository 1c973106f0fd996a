package compile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watch calls recompile whenever the schema file is written or replaced,
// until ctx is done.
func (c *Cmd) watch(ctx context.Context, logger *slog.Logger, recompile func()) error {
	path, err := filepath.Abs(c.Schema)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors that save atomically replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	logger.Info("watching schema for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("schema changed", "event", event.Op.String(), "file", event.Name)
			recompile()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("file watcher error", "error", err)
		}
	}
}
