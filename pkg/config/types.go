// Package config provides configuration management for livereload.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Configuration file
// 4. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Watching: %s\n", cfg.Watch.Dir)
package config

import (
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/0xmhha/livereload/pkg/pathfilter"
)

// Config represents the complete application configuration.
//
// Invariants:
// - Plugin.Port is within 0..65535 (0 picks a free port)
// - Plugin.Delay is >= 0
// - Watch.Dir is not empty
// - Watch.Debounce must be > 0.
type Config struct {
	// Live reload plugin settings
	Plugin PluginConfig `yaml:"plugin" json:"plugin"`

	// Build output watching settings
	Watch WatchConfig `yaml:"watch" json:"watch"`

	// Storage settings
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PluginConfig contains the settings of one live reload plugin instance.
type PluginConfig struct {
	// Stable instance id; empty means a random id per run
	InstanceID string `yaml:"instance_id,omitempty" json:"instance_id,omitempty"`

	// Notification server port; 0 picks one, preferring 35729
	Port int `yaml:"port" json:"port"`

	// Hostname browsers use to reach the server; empty means the page's host
	Hostname string `yaml:"hostname" json:"hostname"`

	// Protocol browsers use to reach the server (http, https); empty means the page's
	Protocol string `yaml:"protocol" json:"protocol"`

	// Only report failures
	Quiet bool `yaml:"quiet" json:"quiet"`

	// Provide the autoload script
	AppendScript bool `yaml:"append_script" json:"append_script"`

	// Notification delay in milliseconds
	Delay int `yaml:"delay" json:"delay"`

	// Paths excluded from notifications: a pattern or a list of patterns
	Ignore pathfilter.IgnoreSpec `yaml:"ignore,omitempty" json:"ignore,omitempty"`

	// Skip files whose content did not change
	UseSourceHash bool `yaml:"use_source_hash" json:"use_source_hash"`
}

// DelayDuration returns Delay as a duration.
func (p PluginConfig) DelayDuration() time.Duration {
	return time.Duration(p.Delay) * time.Millisecond
}

// WatchConfig contains build output watching settings.
type WatchConfig struct {
	// Build output directory
	Dir string `yaml:"dir" json:"dir"`

	// Subdirectories of Dir built as separate targets
	Targets []string `yaml:"targets,omitempty" json:"targets,omitempty"`

	// Quiet period that ends a build
	Debounce time.Duration `yaml:"debounce" json:"debounce"`

	// File, relative to Dir, whose presence marks a failed build
	FailureMarker string `yaml:"failure_marker,omitempty" json:"failure_marker,omitempty"`

	// Doublestar patterns, relative to Dir, that never trigger a build
	Ignore []string `yaml:"ignore,omitempty" json:"ignore,omitempty"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to BoltDB database file for fingerprint history; empty keeps it in memory
	DBPath string `yaml:"db_path" json:"db_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output" json:"output"`

	// Log format (text, json, auto)
	Format string `yaml:"format" json:"format"`
}

// Validate checks if the configuration satisfies all invariants.
//
// Returns an error if any invariant is violated:
//   - Port outside 0..65535
//   - Negative delay
//   - Unknown protocol
//   - Missing watch directory or invalid debounce
//   - Invalid watch ignore pattern
//   - Invalid log level or format
//
// Thread-safety: This method is read-only and thread-safe.
func (c *Config) Validate() error {
	// Validate plugin config
	if c.Plugin.Port < 0 || c.Plugin.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Plugin.Delay < 0 {
		return ErrInvalidDelay
	}
	switch c.Plugin.Protocol {
	case "", "http", "https":
	default:
		return ErrInvalidProtocol
	}

	// Validate watch config
	if c.Watch.Dir == "" {
		return ErrNoWatchDir
	}
	if c.Watch.Debounce <= 0 {
		return ErrInvalidDebounce
	}
	for _, p := range c.Watch.Ignore {
		if !doublestar.ValidatePattern(p) {
			return ErrInvalidWatchIgnore
		}
	}

	// Validate logging config
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"auto": true,
	}
	if !validFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		Plugin: PluginConfig{
			Port:  0,
			Delay: 0,
		},
		Watch: WatchConfig{
			Dir:      "dist",
			Debounce: 100 * time.Millisecond,
		},
		Storage: StorageConfig{
			DBPath: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "auto",
		},
	}
}
