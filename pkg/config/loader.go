package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads configuration from a specific file.
	LoadFromFile(path string) (*Config, error)

	// Source returns the configuration file Load reads, or "" if none.
	Source() string
}

// loader implements the Loader interface.
type loader struct {
	configPath string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, searches for config file in:
// 1. ./livereload.yaml (current directory)
// 2. ~/.config/livereload/config.yaml.
func NewLoader(configPath string) Loader {
	return &loader{
		configPath: configPath,
	}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	// Start with default configuration
	cfg := Default()

	// Load from file if it exists
	if configPath := l.Source(); configPath != "" {
		fileCfg, err := l.LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		cfg = l.mergeConfigs(cfg, fileCfg)
	}

	// Apply environment variable overrides
	cfg, err := l.applyEnvVars(cfg)
	if err != nil {
		return nil, err
	}

	// Validate final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Source implements Loader.Source.
func (l *loader) Source() string {
	if l.configPath != "" {
		return l.configPath
	}
	return l.findConfigFile()
}

// LoadFromFile implements Loader.LoadFromFile.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return &cfg, nil
}

// findConfigFile searches for a config file in standard locations.
//
// Returns empty string if no config file is found.
func (l *loader) findConfigFile() string {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// mergeConfigs merges file configuration into default configuration.
//
// File values override defaults, but only if they are non-zero.
func (l *loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	// Merge plugin config
	if override.Plugin.InstanceID != "" {
		result.Plugin.InstanceID = override.Plugin.InstanceID
	}
	if override.Plugin.Port != 0 {
		result.Plugin.Port = override.Plugin.Port
	}
	if override.Plugin.Hostname != "" {
		result.Plugin.Hostname = override.Plugin.Hostname
	}
	if override.Plugin.Protocol != "" {
		result.Plugin.Protocol = override.Plugin.Protocol
	}
	if override.Plugin.Delay != 0 {
		result.Plugin.Delay = override.Plugin.Delay
	}
	if !override.Plugin.Ignore.IsZero() {
		result.Plugin.Ignore = override.Plugin.Ignore
	}
	// Booleans default to false, so we always take the override value
	result.Plugin.Quiet = override.Plugin.Quiet
	result.Plugin.AppendScript = override.Plugin.AppendScript
	result.Plugin.UseSourceHash = override.Plugin.UseSourceHash

	// Merge watch config
	if override.Watch.Dir != "" {
		result.Watch.Dir = override.Watch.Dir
	}
	if len(override.Watch.Targets) > 0 {
		result.Watch.Targets = override.Watch.Targets
	}
	if override.Watch.Debounce != 0 {
		result.Watch.Debounce = override.Watch.Debounce
	}
	if override.Watch.FailureMarker != "" {
		result.Watch.FailureMarker = override.Watch.FailureMarker
	}
	if len(override.Watch.Ignore) > 0 {
		result.Watch.Ignore = override.Watch.Ignore
	}

	// Merge storage config
	if override.Storage.DBPath != "" {
		result.Storage.DBPath = override.Storage.DBPath
	}

	// Merge logging config
	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

// applyEnvVars applies environment variable overrides to the configuration.
//
// Supported environment variables:
//   - LIVERELOAD_PORT: Notification server port
//   - LIVERELOAD_HOSTNAME: Hostname used by browsers
//   - LIVERELOAD_DELAY: Notification delay in milliseconds
//   - LIVERELOAD_DB: Path to database file
//   - LIVERELOAD_LOG_LEVEL: Log level
func (l *loader) applyEnvVars(cfg *Config) (*Config, error) {
	result := *cfg

	// LIVERELOAD_PORT: integer port
	if v := os.Getenv("LIVERELOAD_PORT"); v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: LIVERELOAD_PORT=%q", ErrInvalidEnv, v)
		}
		result.Plugin.Port = port
	}

	// LIVERELOAD_HOSTNAME: browser-facing hostname
	if v := os.Getenv("LIVERELOAD_HOSTNAME"); v != "" {
		result.Plugin.Hostname = v
	}

	// LIVERELOAD_DELAY: milliseconds
	if v := os.Getenv("LIVERELOAD_DELAY"); v != "" {
		delay, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: LIVERELOAD_DELAY=%q", ErrInvalidEnv, v)
		}
		result.Plugin.Delay = delay
	}

	// LIVERELOAD_DB: database path
	if dbPath := os.Getenv("LIVERELOAD_DB"); dbPath != "" {
		result.Storage.DBPath = dbPath
	}

	// LIVERELOAD_LOG_LEVEL: log level
	if logLevel := os.Getenv("LIVERELOAD_LOG_LEVEL"); logLevel != "" {
		result.Logging.Level = strings.ToLower(logLevel)
	}

	return &result, nil
}

// Load is a convenience function that creates a loader and loads configuration.
//
// Equivalent to:
//
//	loader := NewLoader("")
//	return loader.Load()
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile is a convenience function that loads configuration from a file.
//
// Equivalent to:
//
//	loader := NewLoader(path)
//	return loader.Load()
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to a YAML file.
//
// Creates parent directories if they don't exist.
// File is created with 0600 permissions (read/write for owner only).
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
