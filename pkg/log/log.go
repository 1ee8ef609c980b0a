// Package log configures the process-wide slog logger for the stayflow
// binaries and hands out module-scoped child loggers.
package log

import (
	"log/slog"
	"os"
)

// Setup installs the default logger at the given level. Unknown levels
// fall back to info.
func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	slog.SetDefault(slog.New(handler).With("service", "stayflow"))
}

// WithModule returns a child logger tagged with the module name, so every
// line a subsystem emits carries its origin.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
