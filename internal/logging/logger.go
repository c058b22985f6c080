// Package logging builds the structured logger shared by every component.
//
// Output is JSON by default and text for local development. Never log
// passwords, password hashes or tokens.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/homehub-dev/homehub/internal/config"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "homehub"

// New creates a slog.Logger writing to stdout.
func New(cfg config.LoggingConfig) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a slog.Logger writing to w.
func NewWithWriter(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler

	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
	}))
}

// parseLevel converts a string log level to slog.Level, defaulting to info.
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

// gormWriter adapts slog to gorm's logger.Writer.
type gormWriter struct {
	l *slog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.l.Warn(fmt.Sprintf(format, args...))
}

// NewGormLogger routes gorm's slow-query and error output into l.
// Record-not-found is an expected outcome for lookups and is not logged.
func NewGormLogger(l *slog.Logger) gormlogger.Interface {
	return gormlogger.New(gormWriter{l: l.With("component", "gorm")}, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
