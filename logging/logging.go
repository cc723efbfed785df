// Package logging configures structured logging for the graph pipeline.
// Level, prefix and destination come from environment variables so batch
// runs over large sample corpora can be tuned without code changes.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps a logger together with its closeable destination.
type Logger struct {
	*log.Logger
	closer io.Closer
}

// Close closes the underlying writer if it owns one.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer) *Logger {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	switch os.Getenv("ACFG_LOG_LEVEL") {
	case "debug":
		lg.SetLevel(log.DebugLevel)
	case "warn":
		lg.SetLevel(log.WarnLevel)
	case "error":
		lg.SetLevel(log.ErrorLevel)
	default:
		lg.SetLevel(log.InfoLevel)
	}

	prefix := os.Getenv("ACFG_LOG_PREFIX")
	if prefix == "" {
		prefix = "acfg"
	}

	var closer io.Closer
	if c, ok := w.(io.Closer); ok {
		closer = c
	}

	return &Logger{
		Logger: lg.WithPrefix(prefix),
		closer: closer,
	}
}

// New creates a logger based on environment variables:
// ACFG_LOG_LEVEL: debug, info, warn, error (default: info)
// ACFG_LOG_PREFIX: prefix for log messages (default: "acfg")
// ACFG_LOG_TO_FILE: when set to "1", logs to a timestamped file instead of stderr
func New() *Logger {
	output := io.Writer(os.Stderr)

	if os.Getenv("ACFG_LOG_TO_FILE") == "1" {
		timestamp := time.Now().Format("20060102-150405")
		logFile := fmt.Sprintf("acfg-%s.log", timestamp)

		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err == nil {
			output = f
		}
		// Fall back to stderr when the file cannot be created.
	}

	return NewWithWriter(output)
}

// IsDebug returns true if debug logging is enabled.
func IsDebug() bool {
	return os.Getenv("ACFG_LOG_LEVEL") == "debug"
}
