package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init настраивает slog по умолчанию: текстовый или JSON-вывод в stdout.
func Init(level string, jsonFormat bool) *slog.Logger {
	return InitTo(os.Stdout, level, jsonFormat)
}

func InitTo(w io.Writer, level string, jsonFormat bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)

	l.With("component", "logger").Debug("Logger initialized", "level", level, "json_format", jsonFormat)
	return l
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
