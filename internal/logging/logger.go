package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	// logFile is the file handle for the log file
	logFile *os.File
)

// Init opens (or creates) the log file at path and routes all logging
// there. The TUI owns the terminal, so interactive runs always log to a file.
func Init(path, level string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f

	if err := Setup(f, level); err != nil {
		return err
	}

	Logger.Info("hnreader started", "pid", os.Getpid())
	return nil
}

// Setup routes logging to w at the given level ("debug", "info", "warn",
// "error"). Headless commands pass os.Stderr; tests pass io.Discard.
func Setup(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	Logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
	})
	return nil
}

// ParseLevel converts a level name to a log.Level. Empty means info.
func ParseLevel(level string) (log.Level, error) {
	if level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// Close closes the log file
func Close() {
	if Logger != nil && logFile != nil {
		Logger.Info("hnreader shutting down")
	}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// WithPrefix returns a logger with a prefix. Before Setup or Init it
// returns a logger that discards everything, so callers never get nil.
func WithPrefix(prefix string) *log.Logger {
	if Logger != nil {
		return Logger.WithPrefix(prefix)
	}
	return log.NewWithOptions(io.Discard, log.Options{Prefix: prefix})
}
