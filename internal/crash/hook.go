package crash

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// BacktraceEnv is set to "1" for child processes when backtraces are on.
const BacktraceEnv = "RUDDERC_BACKTRACE"

// ExitCode is the process status after a crash report.
const ExitCode = 101

// ErrAlreadyInstalled is returned by a second Install in the same process.
var ErrAlreadyInstalled = errors.New("crash: hook already installed")

// State is the lifecycle position of a Hook.
type State uint32

const (
	StateUninstalled State = iota
	StateInstalled
	StateReporting
)

func (s State) String() string {
	switch s {
	case StateUninstalled:
		return "uninstalled"
	case StateInstalled:
		return "installed"
	case StateReporting:
		return "reporting"
	default:
		return "unknown"
	}
}

// Config holds hook configuration.
type Config struct {
	Action    string    // label used in the crash document status
	JSON      bool      // emit the JSON crash document instead of text
	Backtrace bool      // attach a filtered stack trace
	Stdout    io.Writer // JSON destination (default os.Stdout)
	Stderr    io.Writer // text destination (default os.Stderr)
	Exit      func(code int)
}

// Hook turns the first unrecovered panic of the process into one report.
// Every goroutine that can panic must defer Recover, either directly or
// by being started through Go or Guard.
type Hook struct {
	cfg      Config
	capturer *Capturer
	state    atomic.Uint32
	once     sync.Once
}

var installed atomic.Bool

// Install creates the process-wide hook. It succeeds once per process.
func Install(cfg Config) (*Hook, error) {
	if !installed.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInstalled
	}
	return newHook(cfg), nil
}

func newHook(cfg Config) *Hook {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Exit == nil {
		cfg.Exit = os.Exit
	}
	h := &Hook{cfg: cfg, capturer: defaultCapturer}
	h.state.Store(uint32(StateInstalled))
	return h
}

// Uninstall releases the process-wide slot so a later Install succeeds.
// It must not race with a report in progress; a hook that already reported
// stays silent afterwards.
func (h *Hook) Uninstall() {
	if h == nil {
		return
	}
	if State(h.state.Swap(uint32(StateUninstalled))) != StateUninstalled {
		installed.Store(false)
	}
}

// State returns the current lifecycle state.
func (h *Hook) State() State {
	if h == nil {
		return StateUninstalled
	}
	return State(h.state.Load())
}

// Recover must be deferred directly. It reports a panic in flight and
// terminates the process; without a panic it does nothing.
func (h *Hook) Recover() {
	r := recover()
	if r == nil {
		return
	}
	h.fire(r)
}

// Go runs fn on a new goroutine guarded by the hook.
func (h *Hook) Go(fn func()) {
	go func() {
		defer h.Recover()
		fn()
	}()
}

// Guard wraps fn so a panic inside it is reported, e.g. for errgroup.Go.
func (h *Hook) Guard(fn func() error) func() error {
	return func() error {
		defer h.Recover()
		return fn()
	}
}

// fire reports the first failure and exits. Later callers wait for the
// first report to finish, then exit without printing.
func (h *Hook) fire(value any) {
	if h == nil {
		panic(value)
	}
	h.once.Do(func() {
		h.state.Store(uint32(StateReporting))
		h.emit(h.buildReport(value))
	})
	h.cfg.Exit(ExitCode)
}

func (h *Hook) buildReport(value any) *Report {
	syms := callerSymbols(1)
	loc := panicLocation(syms)
	rep := &Report{
		Action:   h.cfg.Action,
		Message:  PayloadOf(value, loc).Message(),
		Location: loc,
	}
	if h.cfg.Backtrace {
		rep.Frames = h.capturer.Frames(syms)
	}
	return rep
}

func (h *Hook) emit(rep *Report) {
	// a failing writer must not turn the report into a second panic
	defer func() { _ = recover() }()
	if h.cfg.JSON {
		_ = rep.WriteJSON(h.cfg.Stdout)
		return
	}
	_ = rep.WriteText(h.cfg.Stderr)
}

// panicLocation finds the first non-runtime frame under runtime.gopanic.
func panicLocation(syms []Symbol) *Location {
	for i, s := range syms {
		if s.Function != "runtime.gopanic" {
			continue
		}
		for _, next := range syms[i+1:] {
			if strings.HasPrefix(next.Function, "runtime.") {
				continue
			}
			if next.File == "" {
				return nil
			}
			return &Location{File: next.File, Line: next.Line}
		}
		return nil
	}
	return nil
}
