// Package config loads cribo.toml (spec.md §6). Grounded on
// abdidvp-openkraft's YAMLLoader.Load: read the file, fall back to
// defaults when it is simply absent (not an error), validate before
// anything downstream sees it. BurntSushi/toml replaces yaml.v3 because
// cribo.toml is TOML, not YAML; the load-validate-default shape is
// otherwise identical.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileName is the conventional config file name searched for in a
// project's root directory.
const FileName = "cribo.toml"

// Config mirrors spec.md §6's three keys.
type Config struct {
	Src              []string `toml:"src"`
	PythonVersion    int      `toml:"python_version"`
	PreserveComments bool     `toml:"preserve_comments"`
}

// Default returns the configuration used when no cribo.toml is present.
func Default() Config {
	return Config{
		Src:           []string{"."},
		PythonVersion: 312,
	}
}

// Load reads path, returning Default() if the file does not exist.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline could not act on.
func (c Config) Validate() error {
	if len(c.Src) == 0 {
		return errors.New("src must list at least one source root")
	}
	if c.PythonVersion != 0 && (c.PythonVersion < 37 || c.PythonVersion > 313) {
		return fmt.Errorf("python_version %d is out of the supported 3.7-3.13 range", c.PythonVersion)
	}
	return nil
}
