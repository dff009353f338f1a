package snapshot

import "errors"

// Common errors returned by the snapshot package.
var (
	// ErrDirNotFound is returned when the output directory does not exist.
	ErrDirNotFound = errors.New("output directory not found")

	// ErrNotDirectory is returned when the output path is not a directory.
	ErrNotDirectory = errors.New("output path is not a directory")

	// ErrInvalidPattern is returned for a malformed exclude pattern.
	ErrInvalidPattern = errors.New("invalid exclude pattern")
)
