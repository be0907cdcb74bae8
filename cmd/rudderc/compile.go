package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rudderc/internal/action"
	"rudderc/internal/logger"
	"rudderc/internal/report"
	"rudderc/internal/technique"
)

// compileFile is the unit of work of one source; tests swap it.
var compileFile = technique.CompileFile

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "compile [flags] <technique.toml>...",
		Short:       "Compile technique sources into artifacts",
		Long:        "Compile one or more technique sources. Each source is a separate unit of work with its own report; in json mode several reports form one array.",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{actionAnnotation: action.Compile.String()},
		RunE:        runCompile,
	}
	cmd.Flags().StringP("output-dir", "o", "", "directory for compiled artifacts (default: next to each source)")
	cmd.Flags().Int("jobs", 0, "max parallel compilations (0=auto)")
	return cmd
}

// runCompile compiles every source in parallel, then prints the reports in
// argument order.
func runCompile(cmd *cobra.Command, args []string) error {
	out := outputFrom(cmd.Context())
	if out == nil {
		return fmt.Errorf("output not initialized")
	}
	defer out.Hook().Recover()

	outDir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		return fmt.Errorf("failed to get output-dir flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	units := make([]report.Unit, len(args))

	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(args)))
	for i, src := range args {
		i, src := i, src // per-iteration copies (go.mod targets Go 1.21)
		g.Go(out.Hook().Guard(func() error {
			log := out.NewLogger()
			ctx := logger.WithLogger(gctx, log)
			records, err := compileFile(ctx, src, outDir)
			units[i] = report.Unit{Source: src, Outcome: report.FromResult(records, err), Logs: log.Buffer()}
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := out.PrintAll(action.Compile, units); err != nil {
		return err
	}
	for _, u := range units {
		if u.Outcome.Failed() {
			return errUnitFailed
		}
	}
	return nil
}
