// Package logging configures the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init configures the shared slog logger on stderr and calls slog.SetDefault
// so the stdlib log package routes through the same handler.
//
// Without verbose only WARN and ERROR records are emitted. Verbose enables
// DEBUG and INFO and adds file:line to every record.
func Init(verbose bool) *slog.Logger {
	return InitWriter(os.Stderr, verbose)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, verbose bool) *slog.Logger {
	logger := New(w, verbose)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger without touching the process default.
func New(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     Level(verbose),
		AddSource: verbose,
	})
	return slog.New(h)
}

// Level maps the verbose switch to the minimum emitted level.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// OrDefault returns l, or slog.Default() when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
