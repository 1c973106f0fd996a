// Package logging builds the slog loggers of the jmc command.
package logging

import (
	"io"
	"log/slog"
	"time"
)

// New returns a text logger writing to w. Verbose enables debug records.
// Timestamps are dropped and "error" attributes are logged as "err".
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case "error":
				a.Key = "err"
			case "elapsed":
				if d, ok := a.Value.Any().(time.Duration); ok {
					return slog.String(a.Key, d.Round(time.Microsecond).String())
				}
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
