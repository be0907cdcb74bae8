package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rudderc/internal/action"
	"rudderc/internal/logger"
	"rudderc/internal/report"
	"rudderc/internal/technique"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "check <technique.toml>",
		Short:       "Validate a technique source without writing anything",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{actionAnnotation: action.Check.String()},
		RunE:        runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := outputFrom(cmd.Context())
	if out == nil {
		return fmt.Errorf("output not initialized")
	}
	defer out.Hook().Recover()

	ctx := logger.WithLogger(cmd.Context(), out.Logger())
	records, err := technique.CheckFile(ctx, args[0])
	return finish(out, action.Check, args[0], report.FromResult(records, err))
}
