package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by LoadLocal and LoadGlobal when no config file
// exists. Any other error means a file was found but could not be used.
var ErrNotFound = errors.New("config not found")

// LocalNames lists the repo-local config file names in lookup order.
var LocalNames = []string{".searchusage.yml", ".searchusage.yaml", "searchusage.yml", "searchusage.yaml"}

// FileConfig is the on-disk YAML configuration shape. Pointer fields
// distinguish "unset" from the zero value so layers can be merged.
type FileConfig struct {
	IgnoreDirs      []string `yaml:"ignore_dirs,omitempty"`
	CaseInsensitive *bool    `yaml:"case_insensitive,omitempty"`
	Include         *string  `yaml:"include,omitempty"`
	Exclude         *string  `yaml:"exclude,omitempty"`
	MaxBytes        *int64   `yaml:"max_bytes,omitempty"`
	Threads         *int     `yaml:"threads,omitempty"`
	SkipBinary      *bool    `yaml:"skip_binary,omitempty"`
	FollowSymlinks  *bool    `yaml:"follow_symlinks,omitempty"`
	NoColor         *bool    `yaml:"no_color,omitempty"`
	Format          *string  `yaml:"format,omitempty"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return FileConfig{}, ErrNotFound
}

// GlobalPath returns the global config location under XDG_CONFIG_HOME or
// ~/.config, or "" when neither can be determined.
func GlobalPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, "searchusage", "config.yml")
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	p := GlobalPath()
	if p == "" {
		return FileConfig{}, ErrNotFound
	}
	if _, err := os.Stat(p); err != nil {
		return FileConfig{}, ErrNotFound
	}
	return LoadFile(p)
}

// Write marshals cfg as YAML to path.
func Write(path string, cfg FileConfig) error {
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
