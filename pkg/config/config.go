// Package config provides YAML-based configuration loading with environment
// variable expansion and an environment overlay.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Option configures Load.
type Option func(*options)

type options struct {
	envPrefix string
	skipEnv   bool
}

// WithEnvPrefix sets the prefix of environment variables that override
// values read from the file. Fields opt in with `env` struct tags.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = prefix }
}

// WithoutEnv disables the environment overlay.
func WithoutEnv() Option {
	return func(o *options) { o.skipEnv = true }
}

// Load loads configuration from a YAML file with environment variable
// expansion, then applies environment overrides and validates the result.
func Load[T any](filename string, target *T, opts ...Option) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	return Parse(data, target, opts...)
}

// Parse is Load for an in-memory document.
func Parse[T any](data []byte, target *T, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if !o.skipEnv {
		if err := env.ParseWithOptions(target, env.Options{Prefix: o.envPrefix}); err != nil {
			return fmt.Errorf("failed to apply environment overrides: %w", err)
		}
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// LoadWithDefaults loads configuration with fallback to a default file.
func LoadWithDefaults[T any](filename, defaultFile string, target *T, opts ...Option) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if defaultFile != "" {
			return Load(defaultFile, target, opts...)
		}
		return fmt.Errorf("config file not found: %s", filename)
	}
	return Load(filename, target, opts...)
}

// MustLoad loads configuration and panics on failure.
func MustLoad[T any](filename string, target *T, opts ...Option) {
	if err := Load(filename, target, opts...); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
}
