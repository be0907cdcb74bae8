package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const configFileName = "rudderc.toml"

type toolConfig struct {
	Path   string       `toml:"-"`
	Output outputConfig `toml:"output"`
}

type outputConfig struct {
	Format    string `toml:"format"`
	LogLevel  string `toml:"log_level"`
	Backtrace *bool  `toml:"backtrace"`
	Color     string `toml:"color"`
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig reads path, or the nearest rudderc.toml when path is empty.
// A missing file yields the zero config.
func loadConfig(path string) (toolConfig, error) {
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil || !ok {
			return toolConfig{}, err
		}
		path = found
	}
	var cfg toolConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return toolConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return toolConfig{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Path = path
	return cfg, nil
}
