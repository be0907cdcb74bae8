package logger

import "context"

// ctxKey is the key type for storing Logger in context.
type ctxKey struct{}

// Nop discards everything: it has no buffer and no live sink.
var Nop = &Logger{min: LevelOff}

// FromContext extracts the Logger from context.
// If not found, returns Nop.
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return Nop
	}
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Nop
}

// WithLogger attaches a Logger to context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if l == nil {
		l = Nop
	}
	return context.WithValue(ctx, ctxKey{}, l)
}
