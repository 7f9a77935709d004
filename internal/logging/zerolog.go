package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface. The client
// CLI uses it with a console writer so log lines stay readable in the REPL.
type ZerologLogger struct {
	l zerolog.Logger
}

func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

func (z *ZerologLogger) event(e *zerolog.Event, msg string, args ...any) {
	// args are key-value pairs; a trailing odd value is dropped.
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	e.Msg(msg)
}

func (z *ZerologLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Debug(), msg, args...)
}

func (z *ZerologLogger) Info(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Info(), msg, args...)
}

func (z *ZerologLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Warn(), msg, args...)
}

func (z *ZerologLogger) Error(ctx context.Context, msg string, args ...any) {
	z.event(z.l.Error(), msg, args...)
}

func (z *ZerologLogger) With(args ...any) Logger {
	c := z.l.With()
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		c = c.Interface(key, args[i+1])
	}
	return &ZerologLogger{l: c.Logger()}
}
