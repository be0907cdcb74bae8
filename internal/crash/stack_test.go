package crash

import (
	"strings"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		function string
		want     string
		ok       bool
	}{
		{"rudderc/internal/technique.Compile", "rudderc/internal/technique.Compile", true},
		{"rudderc/internal/technique.(*Artifact).Encode", "rudderc/internal/technique.(*Artifact).Encode", true},
		{"rudderc/internal/technique.mapMethods[...]", "rudderc/internal/technique.mapMethods", true},
		{"rudderc/internal/technique.mapMethods[...].func1", "rudderc/internal/technique.mapMethods.func1", true},
		{"rudderc/internal/errs.Wrap", "rudderc/internal/errs.Wrap", true},
		{"main.runCompile.func2", "main.runCompile.func2", true},
		{"runtime.gopanic", "", false},
		{"github.com/spf13/cobra.(*Command).execute", "", false},
		{"rudderctl/internal/x.F", "", false},
		{"", "", false},
		// the reporter never describes itself
		{"rudderc/internal/crash.(*Hook).Recover", "", false},
		{"rudderc/internal/logger.(*Logger).Info", "", false},
		{"rudderc/internal/report.(*Emitter).Emit", "", false},
		{"rudderc/internal/errs.New", "", false},
		{"rudderc/internal/errs.Newf", "", false},
	}
	for _, tt := range tests {
		got, ok := defaultCapturer.DisplayName(tt.function)
		if ok != tt.ok || got != tt.want {
			t.Errorf("DisplayName(%q) = %q, %v; want %q, %v", tt.function, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFramesPlaceholdersAndDepth(t *testing.T) {
	syms := []Symbol{
		{Function: "runtime.gopanic", File: "/go/src/runtime/panic.go", Line: 770},
		{Function: "rudderc/internal/technique.Compile", File: "/src/technique/compile.go", Line: 42},
		{Function: "", File: "", Line: 0},
		{Function: "main.runCompile"},
		{Function: "rudderc/internal/logger.(*Logger).Error", File: "/src/logger/logger.go", Line: 9},
		{Function: "main.main", File: "/src/cmd/rudderc/main.go"},
	}
	got := defaultCapturer.Frames(syms)
	want := []StackFrame{
		{Name: "rudderc/internal/technique.Compile", File: "/src/technique/compile.go", Line: "42", Depth: 0},
		{Name: "main.runCompile", File: "undefined", Line: "undefined", Depth: 1},
		{Name: "main.main", File: "/src/cmd/rudderc/main.go", Line: "undefined", Depth: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("Frames() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStackFrameString(t *testing.T) {
	f := StackFrame{Name: "main.main", File: "main.go", Line: "3", Depth: 2}
	if got, want := f.String(), "      main.main at 'main.go:3'"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFormatTrace(t *testing.T) {
	frames := []StackFrame{
		{Name: "a.f", File: "a.go", Line: "1", Depth: 0},
		{Name: "a.g", File: "a.go", Line: "2", Depth: 1},
	}
	want := "\nTrace:\n  a.f at 'a.go:1'\n    a.g at 'a.go:2'"
	if got := FormatTrace(frames); got != want {
		t.Errorf("FormatTrace() = %q, want %q", got, want)
	}
}

//go:noinline
func captureFromHelper(c *Capturer) []StackFrame {
	return c.Capture(0)
}

func TestCaptureRealStack(t *testing.T) {
	frames := captureFromHelper(NewCapturer(Module))
	if len(frames) < 2 {
		t.Fatalf("expected at least helper and test frames, got %+v", frames)
	}
	if frames[0].Name != Module+"/internal/crash.captureFromHelper" {
		t.Errorf("innermost frame = %q", frames[0].Name)
	}
	found := false
	for i, f := range frames {
		if f.Depth != i {
			t.Errorf("frame %d has depth %d", i, f.Depth)
		}
		if strings.HasSuffix(f.Name, ".TestCaptureRealStack") {
			found = true
			if !strings.HasSuffix(f.File, "stack_test.go") || f.Line == undefined {
				t.Errorf("test frame lacks a location: %+v", f)
			}
		}
	}
	if !found {
		t.Errorf("test function missing from %+v", frames)
	}
}

func TestCaptureExcludesReporter(t *testing.T) {
	for _, f := range Capture(0) {
		for _, prefix := range ownPrefixes {
			if strings.HasPrefix(f.Name, prefix) {
				t.Errorf("frame %q belongs to the reporter", f.Name)
			}
		}
	}
}
