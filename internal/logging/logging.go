// Package logging provides structured logging for the taskhub client.
// Output goes to a file so the TUI frames stay clean; before Init the
// global logger discards everything.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/taskhub/taskhub-cli/internal/model"
)

var (
	mu     sync.RWMutex
	logger = clog.NewWithOptions(io.Discard, clog.Options{})
	file   *os.File
)

// Init configures the global logger from the application config. An
// empty file target logs to stderr, which suits the non-TUI subcommands.
func Init(cfg model.LoggingConfig) error {
	var w io.Writer = os.Stderr
	var f *os.File

	if cfg.File != "" {
		dir := filepath.Dir(cfg.File)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log directory %s: %w", dir, err)
		}
		var err error
		f, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file %s: %w", cfg.File, err)
		}
		w = f
	}

	l := clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           parseLevel(cfg.Level),
	})

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
	}
	logger = l
	file = f
	return nil
}

// Shutdown closes the log file, if any.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// parseLevel converts a string level to clog.Level.
func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func get() *clog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debug logs a debug message with key-value pairs.
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs an informational message with key-value pairs.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs a warning message with key-value pairs.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs an error message with key-value pairs.
func Error(msg string, args ...any) { get().Error(msg, args...) }
