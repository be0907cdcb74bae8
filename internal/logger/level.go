package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity of a log entry, ordered by increasing importance.
type Level uint8

const (
	LevelTrace Level = iota // finest-grained events
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	// LevelOff silences the live sink. It is never attached to an entry.
	LevelOff
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelOff:
		return "off"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "off":
		return LevelOff, nil
	default:
		return LevelOff, fmt.Errorf("invalid log level: %q (expected: trace|debug|info|warn|error|off)", s)
	}
}

// Enabled reports whether an entry at level e passes the minimum level l.
func (l Level) Enabled(e Level) bool {
	return l != LevelOff && e >= l
}

// MarshalText renders the level as its lower-case name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a level name.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// slogLevel maps a Level onto the slog scale. Trace sits below slog.LevelDebug.
func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelTrace:
		return slog.LevelDebug - 4
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelError + 4
	}
}
