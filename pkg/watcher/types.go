// Package watcher reports changes in build output directories.
//
// It uses fsnotify to watch directory trees and coalesces the events of a
// burst of writes into one Batch, so that a build that writes many files
// is observed as a single change.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{
//	    DebounceInterval: 100 * time.Millisecond,
//	}, logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx, []string{"dist"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	for batch := range w.Batches() {
//	    fmt.Println(batch.Paths())
//	}
package watcher

import (
	"context"
	"time"
)

// Op describes a file operation type.
type Op uint32

// File operation types.
const (
	OpCreate Op = 1 << iota // File created
	OpWrite                 // File modified
	OpRemove                // File deleted
	OpRename                // File renamed/moved
	OpChmod                 // File permissions changed
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	case OpChmod:
		return "CHMOD"
	default:
		return "UNKNOWN"
	}
}

// Event represents a file system event.
type Event struct {
	// Path is the absolute path to the file that triggered the event.
	Path string

	// Op is the operation that triggered the event.
	Op Op

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Batch is the set of events seen during one quiet period. It holds at
// most one event per path (the latest), sorted by path.
type Batch struct {
	Events []Event

	// Timestamp is when the batch was emitted.
	Timestamp time.Time
}

// Paths returns the paths of the batch, sorted.
func (b Batch) Paths() []string {
	paths := make([]string, 0, len(b.Events))
	for _, e := range b.Events {
		paths = append(paths, e.Path)
	}
	return paths
}

// Watcher provides file system monitoring.
type Watcher interface {
	// Start begins watching the specified directory trees and returns once
	// they are registered. Events are processed until ctx is cancelled or
	// Stop is called.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - paths: Directories to watch
	//
	// Returns error if watching cannot be started.
	Start(ctx context.Context, paths []string) error

	// Stop gracefully shuts down the watcher.
	//
	// Returns error if shutdown fails.
	Stop() error

	// Batches returns the channel for receiving coalesced changes.
	// The channel is closed when the watcher is closed.
	Batches() <-chan Batch

	// Errors returns the channel for receiving watcher errors.
	//
	// Non-fatal errors are sent to this channel.
	// The channel is closed when the watcher is closed.
	Errors() <-chan error

	// Close closes the watcher and releases resources.
	//
	// Returns error if resources cannot be released cleanly.
	Close() error
}

// Config contains watcher configuration.
type Config struct {
	// DebounceInterval is the quiet period that ends a batch. Every event
	// restarts it.
	// Default: 100ms.
	DebounceInterval time.Duration

	// Ignore lists doublestar patterns, relative to the watched root, of
	// files and directories that never produce events.
	// Default: DefaultIgnore.
	Ignore []string

	// CircuitBreakerThreshold is the number of consecutive failures
	// before the circuit breaker opens (stops retrying).
	// Default: 5.
	CircuitBreakerThreshold int
}

// DefaultIgnore holds editor and VCS noise.
var DefaultIgnore = []string{
	".git",
	".git/**",
	"**/.DS_Store",
	"**/*.swp",
	"**/*~",
}
