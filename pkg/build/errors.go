package build

import "errors"

// Common errors returned by the build package.
var (
	// ErrUnsupportedStats is returned when Normalize receives a shape it
	// does not know.
	ErrUnsupportedStats = errors.New("unsupported build stats shape")

	// ErrDuplicatePath is returned when a build lists the same file twice.
	ErrDuplicatePath = errors.New("duplicate file path in build")

	// ErrNilStats is returned when Normalize receives nil.
	ErrNilStats = errors.New("nil build stats")
)
