package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rudderc/internal/action"
	"rudderc/internal/errs"
)

// newCrashCmd builds the hidden command that exercises the crash hook.
// It runs no unit of work; the check action only satisfies Output, and the
// crash documents carry the "crash" label.
func newCrashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "crash",
		Short:  "Trigger an unrecoverable failure to test crash reporting",
		Hidden: true,
		Args:   cobra.NoArgs,
		Annotations: map[string]string{
			actionAnnotation: action.Check.String(),
			labelAnnotation:  "crash",
		},
		RunE: runCrash,
	}
	cmd.Flags().String("kind", "string", "failure kind (string|error|runtime|goroutine)")
	return cmd
}

func runCrash(cmd *cobra.Command, _ []string) error {
	out := outputFrom(cmd.Context())
	if out == nil {
		return fmt.Errorf("output not initialized")
	}
	defer out.Hook().Recover()

	kind, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	out.Logger().Debugf("triggering %s failure", kind)

	switch kind {
	case "string":
		panic("crash requested from the command line")
	case "error":
		panic(errs.Wrap(errs.New(errs.IO, "simulated failure"), "crash requested"))
	case "runtime":
		var methods []string
		fmt.Fprintln(cmd.OutOrStdout(), methods[len(methods)])
	case "goroutine":
		out.Hook().Go(func() { panic("crash requested from a worker") })
		// the hook exits the process
		select {}
	default:
		return fmt.Errorf("unknown crash kind %q (expected string|error|runtime|goroutine)", kind)
	}
	return nil
}
