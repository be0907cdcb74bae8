package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Logger is the append surface handed to application code.
// Every call lands in the buffer; the live sink only sees entries at or
// above the minimum level.
type Logger struct {
	buf  *Buffer
	live *slog.Logger
	min  Level
}

// New creates a Logger that buffers into buf and, when live is non-nil,
// echoes entries at or above min to it.
func New(buf *Buffer, live *slog.Logger, min Level) *Logger {
	if buf == nil {
		buf = NewBuffer()
	}
	return &Logger{buf: buf, live: live, min: min}
}

// NewLiveSink builds the per-line terminal backend: the bare message text,
// one line per entry, with no timestamp, level or attributes.
func NewLiveSink(w io.Writer, min Level) *slog.Logger {
	return slog.New(&lineHandler{mu: new(sync.Mutex), w: w, min: min.slogLevel()})
}

// lineHandler prints only slog.Record.Message. Attributes and groups are
// dropped.
type lineHandler struct {
	mu  *sync.Mutex
	w   io.Writer
	min slog.Level
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, len(r.Message)+1)
	line = append(line, r.Message...)
	line = append(line, '\n')
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(line)
	return err
}

func (h *lineHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *lineHandler) WithGroup(string) slog.Handler      { return h }

// Buffer returns the buffer backing this logger.
func (l *Logger) Buffer() *Buffer {
	if l == nil {
		return nil
	}
	return l.buf
}

// Fork returns a logger with the same live sink and a fresh buffer,
// for a new, independent report cycle.
func (l *Logger) Fork() *Logger {
	if l == nil {
		return New(nil, nil, LevelOff)
	}
	return New(NewBuffer(), l.live, l.min)
}

// Log appends msg at level and forwards it to the live sink when enabled.
func (l *Logger) Log(level Level, msg string) {
	if l == nil {
		return
	}
	l.buf.Append(level, msg)
	if l.live != nil && l.min.Enabled(level) {
		l.live.Log(context.Background(), level.slogLevel(), msg)
	}
}

func (l *Logger) Trace(msg string) { l.Log(LevelTrace, msg) }
func (l *Logger) Debug(msg string) { l.Log(LevelDebug, msg) }
func (l *Logger) Info(msg string)  { l.Log(LevelInfo, msg) }
func (l *Logger) Warn(msg string)  { l.Log(LevelWarn, msg) }
func (l *Logger) Error(msg string) { l.Log(LevelError, msg) }

func (l *Logger) Tracef(format string, args ...any) { l.Log(LevelTrace, fmt.Sprintf(format, args...)) }
func (l *Logger) Debugf(format string, args ...any) { l.Log(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.Log(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.Log(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.Log(LevelError, fmt.Sprintf(format, args...)) }
