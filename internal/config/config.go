// Package config loads the boundstore.yaml tool configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/boundstore/internal/pipeline"
)

// Config represents the top-level boundstore.yaml configuration.
type Config struct {
	// Macro is the registration macro name. Defaults to "bounds".
	Macro string `yaml:"macro,omitempty"`

	// Attribute is the application attribute name. Defaults to "bound_alias".
	Attribute string `yaml:"attribute,omitempty"`

	// Color is one of auto, always or never. Defaults to auto, which colours
	// diagnostics only when stderr is a terminal.
	Color string `yaml:"color,omitempty"`

	// Width wraps rendered diagnostics. 0 means the default.
	Width uint `yaml:"width,omitempty"`

	// Jobs limits how many files are processed at once. 0 means one per CPU.
	Jobs int `yaml:"jobs,omitempty"`

	// LogLevel is debug, info, warn or error. Defaults to info.
	LogLevel string `yaml:"log_level,omitempty"`

	// Extensions selects the files taken from directory arguments.
	// Defaults to [".rs"].
	Extensions []string `yaml:"extensions,omitempty"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a boundstore.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses boundstore.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for boundstore.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.Macro != "" && !isIdent(c.Macro) {
		return fmt.Errorf("%s: macro %q is not an identifier", path, c.Macro)
	}
	if c.Attribute != "" && !isIdent(c.Attribute) {
		return fmt.Errorf("%s: attribute %q is not an identifier", path, c.Attribute)
	}
	if c.Macro != "" && c.Macro == c.Attribute {
		return fmt.Errorf("%s: macro and attribute must have different names", path)
	}

	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be one of auto, always, never (got %q)", path, c.Color)
	}

	if c.Jobs < 0 {
		return fmt.Errorf("%s: jobs must not be negative", path)
	}

	if c.LogLevel != "" {
		if _, err := parseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%s: extensions[%d]: %q must start with '.'", path, i, ext)
		}
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Macro == "" {
		c.Macro = DefaultMacro
	}
	if c.Attribute == "" {
		c.Attribute = DefaultAttribute
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Jobs == 0 {
		c.Jobs = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{SourceFileExt}
	}
}

// Options returns the site-recognition options for the pipeline.
func (c *Config) Options() pipeline.Options {
	return pipeline.Options{Macro: c.Macro, Attribute: c.Attribute}
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// UseColor decides whether diagnostics are coloured, given whether the
// destination is a terminal.
func (c *Config) UseColor(terminal bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return terminal
	}
}

// HasExtension reports whether path is a host file by its extension.
func (c *Config) HasExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", s)
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
