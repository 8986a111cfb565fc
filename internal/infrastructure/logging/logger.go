// Package logging builds the slog loggers used by the CLI and the API.
//
// The default format is Maven-style with colors:
// [LEVEL] [component] [HH:MM:SS] message key=value
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/eshaffer321/autoreconcile/internal/infrastructure/config"
)

// Supported values for LoggingConfig.Format.
const (
	FormatMaven = "maven"
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTint  = "tint"
)

// ParseLevel maps a config level name onto a slog.Level. Unknown names
// fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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

// NewLogger creates a structured logger writing to stderr, so that stdout
// stays free for command output.
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	return NewLoggerTo(os.Stderr, cfg)
}

// NewLoggerTo creates a structured logger writing to w in the configured format.
func NewLoggerTo(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	level := ParseLevel(cfg.Level)

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case FormatText:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case FormatTint:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(w),
		})
	default:
		handler = NewMavenHandler(w, &MavenOptions{Level: level})
	}

	return slog.New(handler)
}

// NewLoggerWithComponent creates a logger tagged with a component name
// (e.g. "engine", "api", "storage"). The Maven handler shows it in brackets.
func NewLoggerWithComponent(cfg config.LoggingConfig, component string) *slog.Logger {
	return NewLogger(cfg).With(ComponentKey, component)
}
