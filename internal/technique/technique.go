// Package technique loads technique sources and compiles them into artifacts.
package technique

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"rudderc/internal/errs"
	"rudderc/internal/logger"
)

// Technique is a parsed technique source.
type Technique struct {
	Path    string
	Name    string
	Version string
	Methods []Method
}

// Method is one call of a generic method inside a technique.
type Method struct {
	Name      string            `toml:"name" msgpack:"name"`
	Condition string            `toml:"condition" msgpack:"condition,omitempty"`
	Params    map[string]string `toml:"params" msgpack:"params,omitempty"`
}

type sourceFile struct {
	Technique struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"technique"`
	Methods []Method `toml:"method"`
}

// Load decodes and validates the technique at path.
func Load(ctx context.Context, path string) (*Technique, error) {
	log := logger.FromContext(ctx)
	log.Debugf("loading technique from '%s'", path)

	var src sourceFile
	meta, err := toml.DecodeFile(path, &src)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, errs.Wrap(errs.Newf(errs.Parsing, "line %d: %s", perr.Position.Line, perr.Message), path)
		}
		return nil, errs.Wrap(err, path)
	}

	for _, key := range meta.Undecoded() {
		log.Warnf("%s: unknown key '%s' ignored", path, key.String())
	}

	list := errs.NewList()
	if !meta.IsDefined("technique") {
		list.Add(errs.Wrap(errs.New(errs.Parsing, "missing [technique]"), path))
	} else {
		if strings.TrimSpace(src.Technique.Name) == "" {
			list.Add(errs.Wrap(errs.New(errs.Parsing, "missing [technique].name"), path))
		}
		if strings.TrimSpace(src.Technique.Version) == "" {
			list.Add(errs.Wrap(errs.New(errs.Parsing, "missing [technique].version"), path))
		}
	}
	for i, m := range src.Methods {
		if strings.TrimSpace(m.Name) == "" {
			list.Add(errs.Wrap(errs.Newf(errs.Parsing, "method #%d has no name", i+1), path))
		}
	}
	if err := list.ErrOrNil(); err != nil {
		return nil, err
	}

	// имена сравниваются побайтно, поэтому приводим к NFC
	for i := range src.Methods {
		src.Methods[i].Name = norm.NFC.String(strings.TrimSpace(src.Methods[i].Name))
	}
	t := &Technique{
		Path:    path,
		Name:    norm.NFC.String(strings.TrimSpace(src.Technique.Name)),
		Version: strings.TrimSpace(src.Technique.Version),
		Methods: src.Methods,
	}
	log.Infof("technique '%s' v%s: %d method(s)", t.Name, t.Version, len(t.Methods))
	return t, nil
}

// Summary describes the technique in one line.
func (t *Technique) Summary() string {
	return fmt.Sprintf("%s %s (%d methods)", t.Name, t.Version, len(t.Methods))
}

// ParamNames lists the parameter names used across all methods, sorted.
func (t *Technique) ParamNames() []string {
	seen := make(map[string]bool)
	for _, m := range t.Methods {
		for k := range m.Params {
			seen[k] = true
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
