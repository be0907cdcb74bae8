package report

import (
	"fmt"
	"strings"
)

// Mode selects the report encoding.
type Mode uint8

const (
	// Terminal prints one human-readable summary line.
	Terminal Mode = iota
	// JSON prints the structured document, logs included.
	JSON
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case Terminal:
		return "terminal"
	case JSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseMode converts a string to Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "terminal", "pretty", "":
		return Terminal, nil
	case "json":
		return JSON, nil
	default:
		return Terminal, fmt.Errorf("invalid output format: %q (expected: terminal|json)", s)
	}
}
