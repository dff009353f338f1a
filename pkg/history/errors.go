package history

import "errors"

// Common errors returned by the history package.
var (
	// ErrEmptyDBPath is returned when Open is called without a path.
	ErrEmptyDBPath = errors.New("empty database path")

	// ErrEmptyInstanceID is returned when a bolt store is created without
	// an instance id.
	ErrEmptyInstanceID = errors.New("empty instance id")
)
