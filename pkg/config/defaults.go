package config

import (
	"os"
	"path/filepath"
)

// localConfigFile is the per-project configuration file.
const localConfigFile = "livereload.yaml"

// DefaultConfigPath returns the default user configuration file path.
//
// Returns: ~/.config/livereload/config.yaml.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}

	return filepath.Join(homeDir, ".config", "livereload", "config.yaml")
}

// DefaultDBPath returns the suggested database path for a persistent
// fingerprint history.
//
// Returns: ~/.config/livereload/history.db.
func DefaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./history.db"
	}

	return filepath.Join(homeDir, ".config", "livereload", "history.db")
}

// SearchPaths returns the configuration files tried when no explicit path
// is given, in order of precedence.
func SearchPaths() []string {
	return []string{
		"./" + localConfigFile,
		DefaultConfigPath(),
	}
}
