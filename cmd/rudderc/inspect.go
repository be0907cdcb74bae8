package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rudderc/internal/action"
	"rudderc/internal/logger"
	"rudderc/internal/report"
	"rudderc/internal/technique"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "inspect <artifact.rc>",
		Short:       "Describe a compiled technique",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{actionAnnotation: action.Inspect.String()},
		RunE:        runInspect,
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	out := outputFrom(cmd.Context())
	if out == nil {
		return fmt.Errorf("output not initialized")
	}
	defer out.Hook().Recover()

	ctx := logger.WithLogger(cmd.Context(), out.Logger())
	records, err := technique.InspectFile(ctx, args[0])
	if err == nil && out.Mode() == report.Terminal {
		// terminal reports only list destinations, so show the description here
		for _, r := range records {
			fmt.Fprintln(cmd.OutOrStdout(), r.Content)
		}
	}
	return finish(out, action.Inspect, args[0], report.FromResult(records, err))
}
