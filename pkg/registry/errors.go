package registry

import "errors"

// Common errors returned by the registry package.
var (
	// ErrInvalidPort is returned for ports outside 1-65535.
	ErrInvalidPort = errors.New("invalid port")

	// ErrNilFactory is returned when AcquireOrCreate has no way to build a sink.
	ErrNilFactory = errors.New("nil sink factory")

	// ErrNoFreePort is returned when no port could be allocated.
	ErrNoFreePort = errors.New("no free port available")
)
