// Package logging provides the structured logger shared by the transfer
// engine, its backends and the CLI.
//
// A *Logger wraps log/slog. The zero-cost NewNopLogger discards everything,
// and every method is safe on a nil *Logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel represents different logging levels.
type LogLevel int

// Log levels in increasing severity.
const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String returns the lower-case level name.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "debug"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "info"
	}
}

func (l LogLevel) slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel parses a level name. The empty string means info.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// Config holds logger configuration.
type Config struct {
	// Level sets the minimum level emitted.
	Level LogLevel
	// AddSource includes file and line in every record.
	AddSource bool
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
	// Output receives log records. Default: os.Stderr.
	Output io.Writer
}

// DefaultConfig returns info-level text logging to stderr.
func DefaultConfig() Config {
	return Config{Level: LogLevelInfo}
}

// Logger provides leveled, structured logging.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a logger from config.
func NewLogger(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: config.Level.slog(), AddSource: config.AddSource}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return &Logger{logger: slog.New(handler)}
}

// NewNopLogger creates a logger that discards all records.
func NewNopLogger() *Logger {
	return &Logger{}
}

// OrNop returns l, or a nop logger when l is nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	if l != nil && l.logger != nil {
		l.logger.DebugContext(ctx, msg, args...)
	}
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l != nil && l.logger != nil {
		l.logger.InfoContext(ctx, msg, args...)
	}
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l != nil && l.logger != nil {
		l.logger.WarnContext(ctx, msg, args...)
	}
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l != nil && l.logger != nil {
		l.logger.ErrorContext(ctx, msg, args...)
	}
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.logger == nil {
		return l
	}
	return &Logger{logger: l.logger.With(args...)}
}

// WithOperation returns a logger tagged with the bulk operation name.
func (l *Logger) WithOperation(operation string) *Logger {
	return l.With("operation", operation)
}

// WithPath returns a logger tagged with a path.
func (l *Logger) WithPath(path string) *Logger {
	return l.With("path", path)
}

// WithBackend returns a logger tagged with a backend root and kind.
func (l *Logger) WithBackend(root, kind string) *Logger {
	return l.With("root", root, "kind", kind)
}

// WithSize returns a logger tagged with a byte size.
func (l *Logger) WithSize(size int64) *Logger {
	return l.With("size", size)
}

// LogOperation records the outcome of a bulk operation.
func LogOperation(ctx context.Context, logger *Logger, operation string, duration time.Duration, files int, bytes int64, err error) {
	if logger == nil {
		return
	}

	fields := []any{
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
		"files", files,
		"success", err == nil,
	}
	if bytes > 0 {
		fields = append(fields, "bytes", bytes)
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
		logger.Warn(ctx, "operation failed", fields...)
		return
	}
	logger.Info(ctx, "operation completed", fields...)
}
