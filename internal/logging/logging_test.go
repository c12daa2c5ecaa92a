package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "openwatch.log")
	log, cleanup, err := New(Options{Level: "debug", FilePath: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.Info("hello", "key", "value")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestNewDefaultsToStderr(t *testing.T) {
	log, cleanup, err := New(Options{Level: "info"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer cleanup()
	if log == nil {
		t.Fatal("New returned nil logger")
	}
	ctx := context.Background()
	if !log.Enabled(ctx, slog.LevelInfo) {
		t.Error("info level not enabled")
	}
	if log.Enabled(ctx, slog.LevelDebug) {
		t.Error("debug level enabled at info")
	}
}
