package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls logger construction for hosts that want the SDK's own
// logging setup. Applications embedding the SDK can ignore this entirely and
// pass their own *slog.Logger into each component.
type Config struct {
	Component string    // e.g. "authkit"
	Level     string    // "debug", "info", "warn", "error"
	Format    string    // "json" or "text"
	Output    io.Writer // defaults to os.Stderr
}

// New returns a configured slog.Logger instance.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With("component", cfg.Component)
	}
	return logger
}

// Discard returns a logger that drops everything. Components fall back to it
// when the caller passes no logger, keeping logging opt-in.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Or returns logger when non-nil, otherwise a discard logger.
func Or(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return Discard()
}

// parseLevel maps a string to slog.Level.
func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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
