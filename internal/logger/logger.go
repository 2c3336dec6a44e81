// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var Logger = slog.Default()

// New builds a text logger writing to w for the given level name. Unknown
// names mean info.
func New(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init installs a stdout logger for level as the process default. debug
// forces the debug level.
func Init(level string, debug bool) *slog.Logger {
	if debug {
		level = "debug"
	}
	Logger = New(os.Stdout, level)
	slog.SetDefault(Logger)
	return Logger
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
