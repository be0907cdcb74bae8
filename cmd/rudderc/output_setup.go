package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rudderc/internal/action"
	"rudderc/internal/crash"
	"rudderc/internal/logger"
	"rudderc/internal/report"
)

// actionAnnotation marks commands that run a unit of work.
const actionAnnotation = "rudderc/action"

// labelAnnotation overrides the action name in crash documents.
const labelAnnotation = "rudderc/label"

type outputKey struct{}

func withOutput(ctx context.Context, out *report.Output) context.Context {
	return context.WithValue(ctx, outputKey{}, out)
}

func outputFrom(ctx context.Context) *report.Output {
	if ctx == nil {
		return nil
	}
	out, _ := ctx.Value(outputKey{}).(*report.Output)
	return out
}

type outputSettings struct {
	mode      report.Mode
	level     logger.Level
	backtrace bool
	color     string
}

// resolveOutputSettings merges defaults, rudderc.toml, the environment and
// flags, in increasing priority.
func resolveOutputSettings(cmd *cobra.Command) (outputSettings, error) {
	flags := cmd.Root().PersistentFlags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return outputSettings{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return outputSettings{}, err
	}

	pick := func(name, fromConfig string) (string, error) {
		value, err := flags.GetString(name)
		if err != nil {
			return "", fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		if !flags.Changed(name) && fromConfig != "" {
			return fromConfig, nil
		}
		return value, nil
	}

	formatStr, err := pick("format", cfg.Output.Format)
	if err != nil {
		return outputSettings{}, err
	}
	levelStr, err := pick("log-level", cfg.Output.LogLevel)
	if err != nil {
		return outputSettings{}, err
	}
	colorStr, err := pick("color", cfg.Output.Color)
	if err != nil {
		return outputSettings{}, err
	}

	mode, err := report.ParseMode(formatStr)
	if err != nil {
		return outputSettings{}, err
	}
	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		return outputSettings{}, err
	}

	backtrace := os.Getenv(crash.BacktraceEnv) == "1"
	if cfg.Output.Backtrace != nil {
		backtrace = *cfg.Output.Backtrace
	}
	if flags.Changed("backtrace") {
		backtrace, err = flags.GetBool("backtrace")
		if err != nil {
			return outputSettings{}, fmt.Errorf("failed to get backtrace flag: %w", err)
		}
	}

	return outputSettings{mode: mode, level: level, backtrace: backtrace, color: colorStr}, nil
}

func applyColor(value string) error {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stderr)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	return nil
}

// setupOutput installs the crash hook and log sink for commands that run
// a unit of work and stores the handle in the command context. exit is
// called by the hook after a crash report (nil means os.Exit).
func setupOutput(cmd *cobra.Command, exit func(int)) error {
	name, ok := cmd.Annotations[actionAnnotation]
	if !ok {
		return nil
	}
	act, err := action.Parse(name)
	if err != nil {
		return err
	}

	settings, err := resolveOutputSettings(cmd)
	if err != nil {
		return err
	}
	if err := applyColor(settings.color); err != nil {
		return err
	}

	out, err := report.Init(report.Options{
		Mode:      settings.mode,
		Level:     settings.level,
		Action:    act,
		Label:     cmd.Annotations[labelAnnotation],
		Backtrace: settings.backtrace,
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		Exit:      exit,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = crash.WithHook(ctx, out.Hook())
	ctx = withOutput(ctx, out)
	cmd.SetContext(ctx)
	return nil
}

// finish prints the report of a single unit of work and maps a failure to errUnitFailed.
func finish(out *report.Output, a action.Action, source string, outcome report.Outcome) error {
	if err := out.Print(a, source, outcome); err != nil {
		return err
	}
	if outcome.Failed() {
		return errUnitFailed
	}
	return nil
}
