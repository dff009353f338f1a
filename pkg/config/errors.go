package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrInvalidPort is returned when the plugin port is outside 0..65535.
	ErrInvalidPort = errors.New("invalid port: must be between 0 and 65535")

	// ErrInvalidDelay is returned when the plugin delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be >= 0")

	// ErrInvalidProtocol is returned when the protocol is not http or https.
	ErrInvalidProtocol = errors.New("invalid protocol: must be http, https, or empty")

	// ErrNoWatchDir is returned when no build output directory is specified.
	ErrNoWatchDir = errors.New("no watch directory specified")

	// ErrInvalidDebounce is returned when the debounce interval is <= 0.
	ErrInvalidDebounce = errors.New("invalid debounce: must be > 0")

	// ErrInvalidWatchIgnore is returned when a watch ignore pattern is malformed.
	ErrInvalidWatchIgnore = errors.New("invalid watch ignore pattern")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text, json, or auto")

	// ErrInvalidEnv is returned when an environment variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")

	// ErrConfigNotFound is returned when config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
