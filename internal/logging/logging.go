// Package logging configures structured logging for the CLI and the
// client packages, with optional file rotation.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options control logger construction.
type Options struct {
	Level    string // debug, info, warn, error
	FilePath string // empty writes to stderr
}

// New builds a slog.Logger per the options. When FilePath is set the
// log is written through a rotating file writer. The returned cleanup
// function must be called on shutdown to flush and close the file.
func New(opts Options) (*slog.Logger, func() error, error) {
	var w io.Writer = os.Stderr
	cleanup := func() error { return nil }

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}
		w = lj
		cleanup = lj.Close
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	})
	return slog.New(handler), cleanup, nil
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
