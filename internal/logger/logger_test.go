package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := parseLevel(tc.in); got != tc.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, "info", "json"))
	log.Info("slot created", "slot_id", "abc")

	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestInit_WritesDebugLog(t *testing.T) {
	dir := t.TempDir()
	defer slog.SetDefault(slog.Default())

	if err := Init(dir, "debug", "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slog.Debug("hello from test")
	Close()

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("expected message in log file, got %q", string(data))
	}
}

func TestInit_EmptyDirDiscards(t *testing.T) {
	if err := Init("", "info", "text"); err != nil {
		t.Errorf("expected nil error for empty dir, got %v", err)
	}
}
