package pathfilter

import "errors"

// Common errors returned by the pathfilter package.
var (
	// ErrEmptyPattern is returned when a pattern expression is empty.
	ErrEmptyPattern = errors.New("empty ignore pattern")

	// ErrInvalidPattern is returned when a pattern does not compile.
	ErrInvalidPattern = errors.New("invalid ignore pattern")

	// ErrInvalidIgnore is returned when an ignore value is neither a string
	// nor a list of strings.
	ErrInvalidIgnore = errors.New("ignore must be a pattern or a list of patterns")
)
