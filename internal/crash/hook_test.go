package crash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"

	"rudderc/internal/errs"
)

type exitRecorder struct {
	mu    sync.Mutex
	codes []int
	done  *sync.WaitGroup
}

func (r *exitRecorder) exit(code int) {
	r.mu.Lock()
	r.codes = append(r.codes, code)
	r.mu.Unlock()
	if r.done != nil {
		r.done.Done()
	}
}

func (r *exitRecorder) calls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.codes...)
}

func testHook(t *testing.T, cfg Config) (*Hook, *bytes.Buffer, *bytes.Buffer, *exitRecorder) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var stdout, stderr bytes.Buffer
	rec := &exitRecorder{}
	cfg.Stdout = &stdout
	cfg.Stderr = &stderr
	cfg.Exit = rec.exit
	return newHook(cfg), &stdout, &stderr, rec
}

func runGuarded(h *Hook, fn func()) {
	defer h.Recover()
	fn()
}

func TestHookTerminalStringPayload(t *testing.T) {
	h, stdout, stderr, rec := testHook(t, Config{Action: "compile"})
	runGuarded(h, func() { panic("boom") })

	out := stderr.String()
	if !strings.HasPrefix(out, "rudderc failure: an unrecoverable error occurred at '") {
		t.Errorf("unexpected prefix: %q", out)
	}
	if !strings.Contains(out, "hook_test.go:") {
		t.Errorf("location missing: %q", out)
	}
	if !strings.HasSuffix(out, ": boom\n") {
		t.Errorf("message missing: %q", out)
	}
	if strings.Contains(out, "Trace:") {
		t.Errorf("trace printed while disabled: %q", out)
	}
	if stdout.Len() != 0 {
		t.Errorf("terminal mode wrote to stdout: %q", stdout.String())
	}
	if got := rec.calls(); len(got) != 1 || got[0] != ExitCode {
		t.Errorf("exit calls = %v", got)
	}
	if h.State() != StateReporting {
		t.Errorf("state = %v, want reporting", h.State())
	}
}

func TestHookJSONNormalizesErrorPayload(t *testing.T) {
	h, stdout, stderr, _ := testHook(t, Config{Action: "compile", JSON: true})
	runGuarded(h, func() { panic(errs.New(errs.User, "bad technique")) })

	if stderr.Len() != 0 {
		t.Errorf("JSON mode wrote to stderr: %q", stderr.String())
	}
	var doc map[string]map[string]string
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("crash document is not JSON: %v\n%s", err, stdout.String())
	}
	if len(doc) != 1 {
		t.Errorf("crash document must only hold result, got %v", doc)
	}
	res := doc["result"]
	if res["status"] != "rudderc compile: unrecoverable error" {
		t.Errorf("status = %q", res["status"])
	}
	if !strings.HasPrefix(res["message"], "rudderc failure: an unrecoverable error occurred at '") ||
		!strings.HasSuffix(res["message"], ": bad technique") {
		t.Errorf("message = %q", res["message"])
	}
}

func TestHookRuntimeError(t *testing.T) {
	h, _, stderr, _ := testHook(t, Config{Action: "check"})
	runGuarded(h, func() {
		var s []int
		_ = s[3]
	})
	if !strings.Contains(stderr.String(), ": runtime error: index out of range [3] with length 0") {
		t.Errorf("runtime error not normalized: %q", stderr.String())
	}
}

func TestHookBacktrace(t *testing.T) {
	h, _, stderr, _ := testHook(t, Config{Action: "compile", Backtrace: true})
	h.capturer = NewCapturer(Module)
	runGuarded(h, func() { panic("with trace") })

	out := stderr.String()
	if !strings.Contains(out, "with trace\nTrace:\n  ") {
		t.Errorf("trace section missing: %q", out)
	}
	if !strings.Contains(out, ".TestHookBacktrace") {
		t.Errorf("test frame missing from trace: %q", out)
	}
}

func TestHookReportsOnce(t *testing.T) {
	h, _, stderr, rec := testHook(t, Config{Action: "compile"})

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	rec.done = &wg
	for i := 0; i < workers; i++ {
		h.Go(func() { panic("worker failed") })
	}
	wg.Wait()

	if n := strings.Count(stderr.String(), "unrecoverable error occurred"); n != 1 {
		t.Errorf("got %d reports, want 1:\n%s", n, stderr.String())
	}
	if got := rec.calls(); len(got) != workers {
		t.Errorf("every failing goroutine must exit, got %d calls", len(got))
	}
}

func TestGuardPassesErrorsThrough(t *testing.T) {
	h, _, stderr, rec := testHook(t, Config{})
	want := errs.New(errs.IO, "disk full")
	if err := h.Guard(func() error { return want })(); err != want {
		t.Errorf("Guard() = %v, want %v", err, want)
	}
	if stderr.Len() != 0 || len(rec.calls()) != 0 {
		t.Error("Guard reported without a panic")
	}
}

func TestNilHookRepanics(t *testing.T) {
	var h *Hook
	defer func() {
		if r := recover(); r != "unguarded" {
			t.Errorf("recover() = %v", r)
		}
	}()
	runGuarded(h, func() { panic("unguarded") })
}

func TestInstallOnce(t *testing.T) {
	t.Cleanup(func() { installed.Store(false) })

	h, err := Install(Config{Action: "check", Exit: func(int) {}})
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if h.State() != StateInstalled {
		t.Errorf("state = %v", h.State())
	}
	if _, err := Install(Config{}); err != ErrAlreadyInstalled {
		t.Errorf("second Install error = %v", err)
	}

	h.Uninstall()
	if h.State() != StateUninstalled {
		t.Errorf("state after Uninstall = %v", h.State())
	}
	h2, err := Install(Config{Exit: func(int) {}})
	if err != nil {
		t.Fatalf("Install after Uninstall: %v", err)
	}
	h.Uninstall()
	if _, err := Install(Config{}); err != ErrAlreadyInstalled {
		t.Errorf("a stale handle released the slot of %p: %v", h2, err)
	}
	h2.Uninstall()

	ctx := WithHook(context.Background(), h)
	if HookFromContext(ctx) != h {
		t.Error("hook lost in context")
	}
	if HookFromContext(context.Background()) != nil {
		t.Error("empty context should carry no hook")
	}
}

func TestPayloadOf(t *testing.T) {
	loc := &Location{File: "a.go", Line: 3}
	if p := PayloadOf("plain", loc); p.Kind != PayloadText || p.Message() != "plain" {
		t.Errorf("string payload = %+v", p)
	}
	p := PayloadOf(42, loc)
	if p.Kind != PayloadOpaque || p.Text != "panicked at '42', a.go:3" || p.Message() != "42" {
		t.Errorf("opaque payload = %+v (%q)", p, p.Message())
	}
	if p := PayloadOf(42, nil); p.Message() != "panicked at '42'" {
		t.Errorf("opaque payload without location = %q", p.Message())
	}
	dep := &Location{File: "/root/go/pkg/mod/github.com/vmihailenco/msgpack/v5@v5.4.1/decode.go", Line: 10}
	if p := PayloadOf(errors.New("index out of range"), dep); p.Message() != "index out of range" {
		t.Errorf("opaque payload from a dependency = %q", p.Message())
	}
}
