// Package main implements the rudderc CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rudderc/internal/crash"
	"rudderc/internal/version"
)

// errUnitFailed is returned after a failure report was printed; run only
// turns it into the exit status.
var errUnitFailed = errors.New("unit of work failed")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Exit))
}

// run executes one rudderc invocation and returns its exit status:
// 0 on success, 1 when a unit of work failed, crash.ExitCode after a crash.
// exit is what the crash hook calls once its report is written.
func run(args []string, stdout, stderr io.Writer, exit func(int)) int {
	root := newRootCmd(exit)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	crashed := false
	if cmd != nil {
		if out := outputFrom(cmd.Context()); out != nil {
			crashed = out.Hook().State() == crash.StateReporting
			out.Close()
		}
	}

	switch {
	case crashed:
		return crash.ExitCode
	case err == nil:
		return 0
	case !errors.Is(err, errUnitFailed):
		fmt.Fprintf(stderr, "rudderc: %v\n", err)
	}
	return 1
}

// newRootCmd builds the command tree with its persistent flags.
func newRootCmd(exit func(int)) *cobra.Command {
	root := &cobra.Command{
		Use:           "rudderc",
		Short:         "Rudder technique compiler",
		Long:          `rudderc compiles technique sources and reports results for humans (terminal) or tools (json)`,
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupOutput(cmd, exit)
		},
	}
	addPersistentFlags(root)

	root.AddCommand(newCompileCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newCrashCmd())
	return root
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("format", "terminal", "output format (terminal|json)")
	cmd.PersistentFlags().String("log-level", "warn", "minimum level of live logs (trace|debug|info|warn|error|off)")
	cmd.PersistentFlags().Bool("backtrace", false, "attach a stack trace to crash reports")
	cmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	cmd.PersistentFlags().String("config", "", "path to rudderc.toml (default: search upwards from the current directory)")
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
