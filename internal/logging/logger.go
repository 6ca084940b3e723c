package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init configures the default slog logger with JSON output on stdout.
// Accepts debug, info, warn and error; anything else means info.
func Init(level string) *slog.Logger {
	return New(os.Stdout, level)
}

// New builds a JSON logger writing to w and installs it as the default.
func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: true,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
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
