// Package action names the units of work rudderc performs and the records they produce.
package action

import (
	"fmt"
	"strings"
)

// Action identifies what rudderc was asked to do.
type Action uint8

const (
	Compile Action = iota + 1
	Check
	Inspect
)

// String returns the string representation of Action.
func (a Action) String() string {
	switch a {
	case Compile:
		return "compile"
	case Check:
		return "check"
	case Inspect:
		return "inspect"
	default:
		return "unknown"
	}
}

// Parse converts a string to an Action.
func Parse(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "compile":
		return Compile, nil
	case "check":
		return Check, nil
	case "inspect":
		return Inspect, nil
	default:
		return 0, fmt.Errorf("unknown action: %q (expected: compile|check|inspect)", s)
	}
}

// Result is one record produced by a successful unit of work.
type Result struct {
	Action      string  `json:"action"`
	Source      string  `json:"source"`
	Destination *string `json:"destination,omitempty"`
	Content     string  `json:"content,omitempty"`
}

// NewResult builds a record without a destination.
func NewResult(a Action, source, content string) Result {
	return Result{Action: a.String(), Source: source, Content: content}
}

// WithDestination returns a copy of r that names the artifact it wrote.
func (r Result) WithDestination(dest string) Result {
	r.Destination = &dest
	return r
}
