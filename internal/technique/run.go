package technique

import (
	"context"

	"rudderc/internal/action"
	"rudderc/internal/logger"
	"rudderc/internal/observ"
)

// CompileFile loads src and compiles it next to outDir.
func CompileFile(ctx context.Context, src, outDir string) ([]action.Result, error) {
	timer := observ.NewTimer()
	defer timer.Log(logger.FromContext(ctx))

	idx := timer.Begin("load")
	t, err := Load(ctx, src)
	timer.End(idx, "")
	if err != nil {
		return nil, err
	}
	dest := DestinationFor(src, outDir)
	idx = timer.Begin("write")
	res, err := Compile(ctx, t, dest)
	timer.End(idx, dest)
	if err != nil {
		return nil, err
	}
	return []action.Result{res}, nil
}

// CheckFile loads src without writing anything.
func CheckFile(ctx context.Context, src string) ([]action.Result, error) {
	t, err := Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return []action.Result{action.NewResult(action.Check, src, t.Summary())}, nil
}

// InspectFile decodes a compiled artifact.
func InspectFile(ctx context.Context, path string) ([]action.Result, error) {
	art, err := ReadArtifact(ctx, path)
	if err != nil {
		return nil, err
	}
	return []action.Result{action.NewResult(action.Inspect, path, art.Describe())}, nil
}
