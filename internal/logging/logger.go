package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger so handlers can derive request-scoped loggers
type Logger struct {
	*slog.Logger
}

// NewLogger returns a human-readable debug logger in development and a JSON
// info logger otherwise
func NewLogger(isDevelopment bool) *Logger {
	return newLogger(os.Stdout, isDevelopment)
}

func newLogger(w io.Writer, isDevelopment bool) *Logger {
	var handler slog.Handler
	if isDevelopment {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithFields returns a child logger carrying the given key/value pairs
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}

	return &Logger{Logger: l.Logger.With(args...)}
}
