package plugin

import "errors"

var (
	// ErrInvalidPort is returned when the configured port is outside 0..65535.
	ErrInvalidPort = errors.New("invalid port")

	// ErrNegativeDelay is returned when the configured delay is negative.
	ErrNegativeDelay = errors.New("delay must not be negative")
)
