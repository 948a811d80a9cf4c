// Package config loads anthro2xlsx settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sco1/anthro-tables/fixfmt"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "anthro.yaml"

// Config holds all anthro2xlsx settings.
type Config struct {
	// Encoding of the input files (utf-8, latin1, cp437, ...).
	Encoding string `yaml:"encoding"`

	// Workers bounds how many documents are parsed at once.
	Workers int `yaml:"workers"`

	// OnError is "abort" (stop the batch at the first bad document) or
	// "skip" (log it and carry on).
	OnError string `yaml:"on_error"`

	// Duplicates is "last_wins" or "reject".
	Duplicates string `yaml:"duplicates"`

	// Decoders is an optional YAML file of column decoders loaded over the
	// built-in set.
	Decoders string `yaml:"decoders"`

	// Raw disables the column decoders entirely.
	Raw bool `yaml:"raw"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Encoding:   "utf-8",
		Workers:    runtime.NumCPU(),
		OnError:    "abort",
		Duplicates: "last_wins",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if cfg.Decoders != "" && !filepath.IsAbs(cfg.Decoders) {
			cfg.Decoders = filepath.Join(filepath.Dir(path), cfg.Decoders)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ANTHRO_ENCODING"); v != "" {
		c.Encoding = v
	}
	if v := os.Getenv("ANTHRO_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("ANTHRO_ON_ERROR"); v != "" {
		c.OnError = v
	}
	if v := os.Getenv("ANTHRO_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.OnError {
	case "abort", "skip":
	default:
		return fmt.Errorf("on_error must be abort or skip, got %q", c.OnError)
	}
	if _, err := c.DuplicatePolicy(); err != nil {
		return err
	}
	switch strings.ToLower(c.Encoding) {
	case "", "utf-8", "utf8":
	default:
		known := false
		for _, name := range fixfmt.Encodings() {
			if strings.EqualFold(name, c.Encoding) {
				known = true
			}
		}
		if !known {
			return fmt.Errorf("unsupported encoding %q", c.Encoding)
		}
	}
	return nil
}

// DuplicatePolicy maps Duplicates to the table assembler policy.
func (c *Config) DuplicatePolicy() (fixfmt.DuplicatePolicy, error) {
	switch c.Duplicates {
	case "", "last_wins":
		return fixfmt.DuplicateLastWins, nil
	case "reject":
		return fixfmt.DuplicateReject, nil
	default:
		return 0, fmt.Errorf("duplicates must be last_wins or reject, got %q", c.Duplicates)
	}
}

// SkipErrors reports whether bad documents are skipped.
func (c *Config) SkipErrors() bool {
	return c.OnError == "skip"
}
