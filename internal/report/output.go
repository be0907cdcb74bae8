package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"rudderc/internal/action"
	"rudderc/internal/crash"
	"rudderc/internal/logger"
)

// Options holds output configuration.
type Options struct {
	Mode      Mode
	Level     logger.Level // minimum level of the live sink
	Action    action.Action
	Label     string // names the run in crash documents (default Action)
	Backtrace bool
	Stdout    io.Writer // reports and JSON crash documents (default os.Stdout)
	Stderr    io.Writer // live logs and text crash messages (default os.Stderr)
	Exit      func(code int)
}

// Output ties together the crash hook, the live log sink and the report
// emitter for one rudderc process.
type Output struct {
	mode    Mode
	hook    *crash.Hook
	emitter *Emitter
	live    *slog.Logger
	level   logger.Level
	log     *logger.Logger
}

// Init installs the crash hook and the logging sink. It must run once,
// before any unit of work starts.
func Init(opts Options) (*Output, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	label := opts.Label
	if label == "" {
		label = opts.Action.String()
	}
	hook, err := crash.Install(crash.Config{
		Action:    label,
		JSON:      opts.Mode == JSON,
		Backtrace: opts.Backtrace,
		Stdout:    opts.Stdout,
		Stderr:    opts.Stderr,
		Exit:      opts.Exit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to install crash hook: %w", err)
	}

	if opts.Backtrace {
		if err := os.Setenv(crash.BacktraceEnv, "1"); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", crash.BacktraceEnv, err)
		}
	}

	// JSON mode keeps stdout parseable: nothing is echoed live.
	var live *slog.Logger
	if opts.Mode == Terminal {
		live = logger.NewLiveSink(opts.Stderr, opts.Level)
	}

	return &Output{
		mode:    opts.Mode,
		hook:    hook,
		emitter: &Emitter{Mode: opts.Mode, Out: opts.Stdout},
		live:    live,
		level:   opts.Level,
		log:     logger.New(logger.NewBuffer(), live, opts.Level),
	}, nil
}

// Mode returns the configured output mode.
func (o *Output) Mode() Mode { return o.mode }

// Hook returns the installed crash hook.
func (o *Output) Hook() *crash.Hook { return o.hook }

// Logger returns the logger of the current report cycle.
func (o *Output) Logger() *logger.Logger { return o.log }

// NewLogger returns a logger with its own buffer, for a unit of work that
// is reported separately through PrintWith.
func (o *Output) NewLogger() *logger.Logger {
	return logger.New(logger.NewBuffer(), o.live, o.level)
}

// Print emits the final report of the current cycle, with the logs
// buffered so far, and starts a new cycle.
func (o *Output) Print(a action.Action, source string, outcome Outcome) error {
	log := o.log
	o.log = o.NewLogger()
	return o.PrintWith(a, source, outcome, log)
}

// PrintAll emits the reports of several units at once. A single unit is
// printed like PrintWith; more units form one JSON array in JSON mode.
func (o *Output) PrintAll(a action.Action, units []Unit) error {
	if len(units) == 1 {
		return o.emitter.Emit(a, units[0].Source, units[0].Outcome, units[0].Logs)
	}
	return o.emitter.EmitAll(a, units)
}

// Close uninstalls the crash hook so another Output can be initialised.
func (o *Output) Close() {
	if o == nil {
		return
	}
	o.hook.Uninstall()
}

// PrintWith emits a report using the buffer of log.
func (o *Output) PrintWith(a action.Action, source string, outcome Outcome, log *logger.Logger) error {
	return o.emitter.Emit(a, source, outcome, log.Buffer())
}
