package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

var log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init configures the process-wide JSON logger. An unknown level falls back
// to info.
func Init(level string, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
	slog.SetDefault(log)
	log.Info("logger initialized", slog.String("level", ParseLevel(level).String()))
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

func Debug(msg string, fields map[string]any) {
	emit(slog.LevelDebug, msg, fields)
}

func Info(msg string, fields map[string]any) {
	emit(slog.LevelInfo, msg, fields)
}

func Warn(msg string, fields map[string]any) {
	emit(slog.LevelWarn, msg, fields)
}

func Error(msg string, fields map[string]any) {
	emit(slog.LevelError, msg, fields)
}

func Fatal(msg string, fields map[string]any) {
	emit(slog.LevelError, msg, fields)
	os.Exit(1)
}

func emit(level slog.Level, msg string, fields map[string]any) {
	ctx := context.Background()
	if !log.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	log.LogAttrs(ctx, level, msg, attrs...)
}
