package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the notes directory.
const FileName = "axon.yaml"

// Load reads path into cfg, leaving fields the file does not mention
// untouched. A missing file is not an error unless explicit is set.
func Load(cfg *Config, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ConfigFile = path
	return nil
}

// Resolve returns the config file to load: the explicit path when given,
// else axon.yaml in notesDir.
func Resolve(explicit, notesDir string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	return filepath.Join(notesDir, FileName), false
}
