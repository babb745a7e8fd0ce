// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Writes to a debug.log in the config directory so the TUI keeps the terminal.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const logFileName = "debug.log"

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init configures the default slog logger.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
// If configDir is empty or unusable, logging is discarded and the error returned.
func Init(configDir, level, format string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()

	if configDir == "" {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return err
	}

	f, err := os.OpenFile(filepath.Join(configDir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return err
	}
	logFile = f

	slog.SetDefault(slog.New(newHandler(f, level, format)))
	return nil
}

// Close flushes and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
