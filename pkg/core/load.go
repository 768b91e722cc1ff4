// pkg/core/load.go
package core

import (
	"errors"
	"io/fs"
	"os"

	manifest "github.com/joeydtaylor/durable-starter/pkg/manifest"
	toml "github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (manifest.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return manifest.Config{}, err
	}
	var cfg manifest.Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return manifest.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, err
	}
	return cfg, nil
}

// LoadConfigOrDefault treats a missing file as an empty one.
func LoadConfigOrDefault(path string) (manifest.Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return manifest.Default(), nil
	}
	return cfg, err
}
