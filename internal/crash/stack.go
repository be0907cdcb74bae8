package crash

import (
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// Module is the import path prefix of rudderc's own packages.
const Module = "rudderc"

const (
	undefined     = "undefined"
	maxStackDepth = 128
)

// ownPrefixes name the reporting subsystem itself. Frames under these
// prefixes always describe the reporter reporting, so they are dropped.
var ownPrefixes = []string{
	Module + "/internal/logger",
	Module + "/internal/crash",
	Module + "/internal/report",
	Module + "/internal/errs.New",
}

// StackFrame is one rendered entry of a captured call stack.
type StackFrame struct {
	Name  string
	File  string // "undefined" when unknown
	Line  string // "undefined" when unknown
	Depth int
}

// String renders the frame indented by its depth.
func (f StackFrame) String() string {
	return "  " + strings.Repeat(" ", f.Depth*2) + f.Name + " at '" + f.File + ":" + f.Line + "'"
}

// Symbol is one resolved location from the runtime.
type Symbol struct {
	Function string
	File     string
	Line     int
}

// Capturer turns raw symbols into frames belonging to the tool's own code.
type Capturer struct {
	namespace *regexp.Regexp
	exclude   []string
}

// NewCapturer keeps symbols under module (and package main), minus any
// whose display name starts with one of exclude.
func NewCapturer(module string, exclude ...string) *Capturer {
	// path, optional generic instantiation marker, optional trailing segment
	pattern := `^(?P<path>(?:` + regexp.QuoteMeta(module) + `(?:/[\w\-]+)*|main)\.[\w().*\-]+?)` +
		`(?:\[[^\]]*\](?P<ending>(?:\.[\w().*\-]+)+)?)?$`
	return &Capturer{
		namespace: regexp.MustCompile(pattern),
		exclude:   exclude,
	}
}

var defaultCapturer = NewCapturer(Module, ownPrefixes...)

// DisplayName derives the symbolic path of a function name, or reports
// false when the symbol is outside the namespace or excluded.
func (c *Capturer) DisplayName(function string) (string, bool) {
	if function == "" {
		return "", false
	}
	m := c.namespace.FindStringSubmatch(function)
	if m == nil {
		return "", false
	}
	name := m[c.namespace.SubexpIndex("path")] + m[c.namespace.SubexpIndex("ending")]
	for _, prefix := range c.exclude {
		if strings.HasPrefix(name, prefix) {
			return "", false
		}
	}
	return name, true
}

// Frames filters syms, innermost first, and assigns depths in output order.
func (c *Capturer) Frames(syms []Symbol) []StackFrame {
	frames := make([]StackFrame, 0, len(syms))
	for _, sym := range syms {
		name, ok := c.DisplayName(sym.Function)
		if !ok {
			continue
		}
		frame := StackFrame{
			Name:  name,
			File:  undefined,
			Line:  undefined,
			Depth: len(frames),
		}
		if sym.File != "" {
			frame.File = sym.File
		}
		if sym.Line > 0 {
			frame.Line = strconv.Itoa(sym.Line)
		}
		frames = append(frames, frame)
	}
	return frames
}

// Capture walks the calling goroutine's stack. skip counts frames above
// the caller of Capture, like runtime.Callers.
func (c *Capturer) Capture(skip int) []StackFrame {
	return c.Frames(callerSymbols(skip + 1))
}

// Capture walks the calling goroutine's stack with the default capturer.
func Capture(skip int) []StackFrame {
	return defaultCapturer.Frames(callerSymbols(skip + 1))
}

func callerSymbols(skip int) []Symbol {
	pcs := make([]uintptr, maxStackDepth)
	// +2: runtime.Callers and callerSymbols itself
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}
	it := runtime.CallersFrames(pcs[:n])
	syms := make([]Symbol, 0, n)
	for {
		f, more := it.Next()
		syms = append(syms, Symbol{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return syms
}

// FormatTrace renders frames as the trailing trace section of a crash message.
func FormatTrace(frames []StackFrame) string {
	lines := make([]string, len(frames))
	for i, f := range frames {
		lines[i] = f.String()
	}
	return "\nTrace:\n" + strings.Join(lines, "\n")
}
