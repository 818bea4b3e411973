// Package logging is the process-wide structured logger. It writes to
// stderr and, when a file is configured, to a size-rotated log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logger. It logs to stderr until Setup runs.
var Logger = newLogger(os.Stderr, log.InfoLevel)

// Options configures Setup.
type Options struct {
	Level     string // debug, info, warn, error
	File      string // empty disables the file sink
	MaxSizeMB int
	MaxFiles  int
	// Quiet drops the stderr sink. Used by CLI commands so log lines do
	// not interleave with their output.
	Quiet bool
}

// Setup replaces the global logger. The returned closer flushes the
// rotating file; it is safe to call when no file is configured.
func Setup(o Options) (io.Closer, error) {
	level := log.InfoLevel
	if o.Level != "" {
		l, err := log.ParseLevel(o.Level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", o.Level, err)
		}
		level = l
	}

	var sinks []io.Writer
	var closer io.Closer = nopCloser{}
	if o.File != "" {
		if err := os.MkdirAll(filepath.Dir(o.File), 0700); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		rot := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    max(1, o.MaxSizeMB), // megabytes
			MaxBackups: o.MaxFiles,
			MaxAge:     28, // days
			Compress:   true,
		}
		sinks = append(sinks, rot)
		closer = rot
	}
	if !o.Quiet || len(sinks) == 0 {
		sinks = append(sinks, os.Stderr)
	}

	Logger = newLogger(io.MultiWriter(sinks...), level)
	return closer, nil
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "habitforge",
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// With returns a child logger carrying keyvals on every line.
func With(keyvals ...any) *log.Logger {
	return Logger.With(keyvals...)
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) { Logger.Debug(msg, keyvals...) }

// Info logs an info message.
func Info(msg string, keyvals ...any) { Logger.Info(msg, keyvals...) }

// Warn logs a warning message.
func Warn(msg string, keyvals ...any) { Logger.Warn(msg, keyvals...) }

// Error logs an error message.
func Error(msg string, keyvals ...any) { Logger.Error(msg, keyvals...) }
