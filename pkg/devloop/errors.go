package devloop

import "errors"

var (
	// ErrWatcherFailed is returned when the watcher gave up after repeated errors.
	ErrWatcherFailed = errors.New("output watcher failed")

	// ErrInvalidMarker is returned when the failure marker is not a
	// relative path inside the output directory.
	ErrInvalidMarker = errors.New("invalid failure marker")
)
