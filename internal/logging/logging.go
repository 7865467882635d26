// Package logging configures the process-wide slog default. Everything else
// in the application logs through slog.Default (or the request-scoped logger
// the middleware derives from it).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New installs the default logger. LOG_FORMAT selects "text" (development,
// with source locations) or "json" (production); LOG_LEVEL selects the
// minimum level, defaulting to info for json and debug for text. The chat
// relay logs dropped frames at debug, so a debug level is the way to watch
// a misbehaving client.
func New() {
	format := strings.ToLower(os.Getenv("LOG_FORMAT"))

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: levelFromEnv(slog.LevelInfo),
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     levelFromEnv(slog.LevelDebug),
			AddSource: true,
		})
	}

	slog.SetDefault(slog.New(handler))
}

func levelFromEnv(fallback slog.Level) slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return fallback
}
