package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tomoyayamashita/license-gate/internal/ecosystem"
	"github.com/tomoyayamashita/license-gate/internal/policy"
)

// ProjectFile is the per-project configuration file name
const ProjectFile = ".licensegate.yaml"

// DefaultYAML is the configuration used when no file is found. Its lists are
// empty, so every license not explicitly disallowed passes.
//
//go:embed default.yaml
var DefaultYAML []byte

// ErrInvalidConfig is returned for configuration files that cannot be used
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the license gate configuration
type Config struct {
	Allowed      []string    `yaml:"allowed"`
	Disallowed   []string    `yaml:"disallowed"`
	Ignores      []string    `yaml:"ignores"`
	Dependencies []string    `yaml:"dependencies"`
	Mode         policy.Mode `yaml:"mode"`
	Concurrency  int         `yaml:"concurrency"`

	// Source is where the configuration was loaded from (not in YAML)
	Source string `yaml:"-"`
}

// Policy returns the policy part of the configuration
func (c *Config) Policy() policy.Policy {
	return policy.Policy{
		Allowed:        c.Allowed,
		Disallowed:     c.Disallowed,
		IgnorePatterns: c.Ignores,
	}
}

// Load loads configuration with 4-level fallback:
// 1. Explicit path (--config flag)
// 2. Project directory (<projectDir>/.licensegate.yaml)
// 3. Home directory (~/.licensegate/config.yaml)
// 4. Embedded default (passed as defaultData)
func Load(path, projectDir string, defaultData []byte) (*Config, error) {
	// Level 1: Explicit path
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return Parse(data, path)
	}

	// Level 2: Project directory
	if projectDir != "" {
		projectConfig := filepath.Join(projectDir, ProjectFile)
		if fileExists(projectConfig) {
			data, err := os.ReadFile(projectConfig)
			if err != nil {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			return Parse(data, projectConfig)
		}
	}

	// Level 3: Home directory
	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, ".licensegate", "config.yaml")
		if fileExists(homeConfig) {
			data, err := os.ReadFile(homeConfig)
			if err == nil {
				return Parse(data, homeConfig)
			}
		}
	}

	// Level 4: Embedded default
	return Parse(defaultData, "embedded")
}

// Parse decodes and validates a configuration document. Unknown keys are rejected.
func Parse(data []byte, source string) (*Config, error) {
	var config Config

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, source, err)
	}

	if config.Mode == "" {
		config.Mode = policy.ModeStrict
	}
	config.Source = source

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	return &config, nil
}

// Validate checks the configuration for errors that must stop a check
// before any scanning
func (c *Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative", ErrInvalidConfig)
	}
	if _, err := ecosystem.ParseGroups(c.Dependencies); err != nil {
		return err
	}
	if _, err := policy.NewEngine(c.Policy()); err != nil {
		return err
	}
	return nil
}

// Merge appends extra policy entries, typically from command line flags
func (c *Config) Merge(allowed, disallowed, ignores, dependencies []string) {
	c.Allowed = append(c.Allowed, allowed...)
	c.Disallowed = append(c.Disallowed, disallowed...)
	c.Ignores = append(c.Ignores, ignores...)
	c.Dependencies = append(c.Dependencies, dependencies...)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
