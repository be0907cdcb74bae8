package technique

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"
	"github.com/vmihailenco/msgpack/v5"

	"rudderc/internal/action"
	"rudderc/internal/errs"
	"rudderc/internal/logger"
)

// Current schema version - increment when Artifact format changes
const artifactSchemaVersion uint16 = 1

// ArtifactExt is the file extension of compiled techniques.
const ArtifactExt = ".rc"

// Artifact is the compiled form of a technique.
type Artifact struct {
	Schema      uint16   `msgpack:"schema"`
	Name        string   `msgpack:"name"`
	Version     string   `msgpack:"version"`
	Source      string   `msgpack:"source"`
	MethodCount uint16   `msgpack:"method_count"`
	Params      []string `msgpack:"params"`
	Methods     []Method `msgpack:"methods"`
}

// DestinationFor returns the artifact path for src, inside outDir when set.
func DestinationFor(src, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ArtifactExt
	if outDir == "" {
		return filepath.Join(filepath.Dir(src), base)
	}
	return filepath.Join(outDir, base)
}

// Compile lowers t into an artifact and writes it to dest.
func Compile(ctx context.Context, t *Technique, dest string) (action.Result, error) {
	log := logger.FromContext(ctx)

	count, err := safecast.Conv[uint16](len(t.Methods))
	if err != nil {
		return action.Result{}, errs.Wrap(errs.Newf(errs.Compilation, "too many methods: %d", len(t.Methods)), t.Path)
	}

	art := Artifact{
		Schema:      artifactSchemaVersion,
		Name:        t.Name,
		Version:     t.Version,
		Source:      t.Path,
		MethodCount: count,
		Params:      t.ParamNames(),
		Methods:     t.Methods,
	}
	if err := writeArtifact(dest, &art); err != nil {
		return action.Result{}, errs.Wrap(err, "writing "+dest)
	}
	log.Infof("compiled '%s' into '%s'", t.Path, dest)

	return action.NewResult(action.Compile, t.Path, t.Summary()).WithDestination(dest), nil
}

func writeArtifact(p string, art *Artifact) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := msgpack.NewEncoder(f).Encode(art); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(tmp, p)
}

// ReadArtifact decodes the artifact at path.
func ReadArtifact(ctx context.Context, path string) (*Artifact, error) {
	log := logger.FromContext(ctx)

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, "opening "+path)
	}
	defer f.Close()

	var art Artifact
	if err := msgpack.NewDecoder(f).Decode(&art); err != nil {
		return nil, errs.Wrap(errs.Newf(errs.Parsing, "not a compiled technique: %v", err), path)
	}
	if art.Schema != artifactSchemaVersion {
		return nil, errs.Wrap(errs.Newf(errs.Parsing, "unsupported schema %d (expected %d)", art.Schema, artifactSchemaVersion), path)
	}
	if int(art.MethodCount) != len(art.Methods) {
		log.Warnf("%s: header announces %d methods, found %d", path, art.MethodCount, len(art.Methods))
	}
	log.Debugf("read artifact '%s' (%s %s)", path, art.Name, art.Version)
	return &art, nil
}

// Describe renders an artifact for the inspect action.
func (a *Artifact) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s from %s", a.Name, a.Version, a.Source)
	width := 0
	for _, m := range a.Methods {
		width = max(width, runewidth.StringWidth(m.Name))
	}
	for _, m := range a.Methods {
		sb.WriteString("\n  ")
		if m.Condition == "" {
			sb.WriteString(m.Name)
			continue
		}
		sb.WriteString(runewidth.FillRight(m.Name, width))
		sb.WriteString(" if ")
		sb.WriteString(m.Condition)
	}
	return sb.String()
}
