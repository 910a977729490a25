package common

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLevel converts a configured level name into a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalidConfig, level)
	}
}

// NewLogger builds a logger writing to w in the given format ("console" or "json").
func NewLogger(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "", "console":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: log format %q", ErrInvalidConfig, format)
	}

	return slog.New(handler), nil
}

// SetupLogger configures the global logger to write to stderr and, when
// debugLogPath is set, to an append-only debug log file. The returned closer
// releases the file.
func SetupLogger(level slog.Level, format, debugLogPath string) (*slog.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)

	if debugLogPath != "" {
		if err := os.MkdirAll(filepath.Dir(debugLogPath), 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create debug log directory: %w", err)
		}
		f, err := os.OpenFile(debugLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) // #nosec G304
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open debug log: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = f
	}

	logger, err := NewLogger(w, level, format)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}

	slog.SetDefault(logger)
	return logger, closer, nil
}
