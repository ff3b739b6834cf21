// Package config loads the optional .envlock.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/illarion/envlock/internal/diffview"
	"github.com/illarion/envlock/internal/format"
)

const (
	// FileName is the project config looked up in the working directory
	FileName = ".envlock.yaml"
	// PathEnv overrides the config location
	PathEnv = "ENVLOCK_CONFIG"
)

// ColorMode controls ANSI colouring of diff output
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(s); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	}
	return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

// Config holds per-project defaults. Command-line flags take precedence.
type Config struct {
	EnvFile    string          `yaml:"env_file"`
	Snapshot   string          `yaml:"snapshot"`
	Format     format.Format   `yaml:"format"`
	DiffFormat diffview.Format `yaml:"diff_format"`
	LocalOnly  []string        `yaml:"local_only"`
	Color      ColorMode       `yaml:"color"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		EnvFile:    ".env",
		Snapshot:   "default",
		Format:     format.Env,
		DiffFormat: diffview.Inline,
		Color:      ColorAuto,
	}
}

// Load reads the config named by ENVLOCK_CONFIG, or .envlock.yaml in the
// current directory. A missing default file yields Default(); a missing
// file named explicitly is an error.
func Load() (Config, error) {
	if path := os.Getenv(PathEnv); path != "" {
		return LoadFile(path)
	}
	cfg, err := LoadFile(FileName)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads and validates a config file
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated fields and fills blanks with defaults
func (c *Config) Validate() error {
	def := Default()
	if c.EnvFile == "" {
		c.EnvFile = def.EnvFile
	}
	if c.Snapshot == "" {
		c.Snapshot = def.Snapshot
	}
	if c.Format == "" {
		c.Format = def.Format
	}
	if c.DiffFormat == "" {
		c.DiffFormat = def.DiffFormat
	}
	if c.Color == "" {
		c.Color = def.Color
	}

	if _, err := format.Parse(string(c.Format)); err != nil {
		return err
	}
	if _, err := diffview.ParseFormat(string(c.DiffFormat)); err != nil {
		return err
	}
	if _, err := ParseColorMode(string(c.Color)); err != nil {
		return err
	}
	return nil
}
