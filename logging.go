package formstate

import (
	"context"
	"log/slog"
	"time"
)

// LogEvent describes one engine operation or validator invocation.
type LogEvent struct {
	Op        string
	Ident     Ident
	Field     string
	Validator string
	Engine    string
	Duration  time.Duration
	Err       error
}

// Logger records engine events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// SlogLogger forwards events to a structured slog logger. Failed operations
// log at warn level, everything else at debug.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return LoggerFunc(func(event LogEvent) {
		attrs := []slog.Attr{slog.String("op", event.Op)}
		if !event.Ident.IsZero() {
			attrs = append(attrs, slog.String("ident", event.Ident.String()))
		}
		if event.Field != "" {
			attrs = append(attrs, slog.String("field", event.Field))
		}
		if event.Validator != "" {
			attrs = append(attrs, slog.String("validator", event.Validator))
		}
		if event.Engine != "" {
			attrs = append(attrs, slog.String("engine", event.Engine))
		}
		if event.Duration > 0 {
			attrs = append(attrs, slog.Duration("duration", event.Duration))
		}
		level := slog.LevelDebug
		if event.Err != nil {
			level = slog.LevelWarn
			attrs = append(attrs, slog.String("error", event.Err.Error()))
		}
		logger.LogAttrs(context.Background(), level, "formstate", attrs...)
	})
}
