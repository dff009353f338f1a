package server

import (
	"errors"
	"fmt"
)

// Common errors returned by the server package.
var (
	// ErrAddressInUse is returned when the port is taken by another process.
	ErrAddressInUse = errors.New("address already in use")

	// ErrListen is returned for any other bind failure.
	ErrListen = errors.New("failed to listen")

	// ErrAlreadyListening is returned when Listen is called twice.
	ErrAlreadyListening = errors.New("server already listening")

	// ErrClosed is returned when Listen is called on a closed server.
	ErrClosed = errors.New("server closed")
)

// BindError describes a failed Listen. It matches ErrAddressInUse or
// ErrListen with errors.Is, as well as the underlying cause.
type BindError struct {
	// Port is the port that could not be bound.
	Port int

	// Code is "EADDRINUSE" for an occupied port and empty otherwise.
	Code string

	// Err is the underlying network error.
	Err error
}

// Error implements error.
func (e *BindError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("listen on port %d: %s: %v", e.Port, e.Code, e.Err)
	}
	return fmt.Sprintf("listen on port %d: %v", e.Port, e.Err)
}

// Unwrap returns the error kind and the cause.
func (e *BindError) Unwrap() []error {
	if e.Code == codeAddrInUse {
		return []error{ErrAddressInUse, e.Err}
	}
	return []error{ErrListen, e.Err}
}
