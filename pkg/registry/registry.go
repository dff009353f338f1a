// Package registry keeps at most one live notification sink per network
// port within a process.
//
// Several plugin instances may target the same port. The first one to ask
// creates the sink and starts it listening; every later instance adopts that
// sink. Instances that share a sink share its clients: settings of a later
// instance (quiet, ignore) only affect its own filtering, never the sink.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/0xmhha/livereload/pkg/notify"
)

// Sink is a live reload notification server.
type Sink interface {
	notify.Notifier

	// Listen binds the sink to port and starts serving. It returns once the
	// sink is ready or binding failed.
	Listen(ctx context.Context, port int) error

	// Close stops the sink.
	Close(ctx context.Context) error
}

// Factory builds an unstarted sink for port.
type Factory func(port int) Sink

// entry is one registered sink. ready is closed once Listen returned; err
// is written before that and read only after.
type entry struct {
	sink  Sink
	ready chan struct{}
	err   error
}

// Registry maps ports to sinks.
type Registry struct {
	mu      sync.Mutex
	entries map[int]*entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[int]*entry),
	}
}

var defaultRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// AcquireOrCreate returns the sink registered for port, creating it with
// factory and starting it if none exists. created is true only for the
// caller whose factory built the sink.
//
// Callers that find a sink still starting wait for its Listen to finish.
// If Listen fails, the entry is dropped, the creator gets the Listen error,
// and so does every caller that was waiting on it.
func (r *Registry) AcquireOrCreate(ctx context.Context, port int, factory Factory) (sink Sink, created bool, err error) {
	if port <= 0 || port > 65535 {
		return nil, false, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}

	r.mu.Lock()
	e, ok := r.entries[port]
	if !ok {
		if factory == nil {
			r.mu.Unlock()
			return nil, false, ErrNilFactory
		}
		e = &entry{
			sink:  factory(port),
			ready: make(chan struct{}),
		}
		r.entries[port] = e
	}
	r.mu.Unlock()

	if !ok {
		return r.start(ctx, port, e)
	}

	select {
	case <-e.ready:
		if e.err != nil {
			return nil, false, e.err
		}
		return e.sink, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// start runs the single Listen call of a new entry.
func (r *Registry) start(ctx context.Context, port int, e *entry) (Sink, bool, error) {
	err := e.sink.Listen(ctx, port)
	if err != nil {
		r.mu.Lock()
		if r.entries[port] == e {
			delete(r.entries, port)
		}
		r.mu.Unlock()
	}

	e.err = err
	close(e.ready)

	if err != nil {
		return nil, true, err
	}
	return e.sink, true, nil
}

// Ports returns the registered ports in ascending order.
func (r *Registry) Ports() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ports := make([]int, 0, len(r.entries))
	for p := range r.entries {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports
}

// Close closes every ready sink and empties the registry. It is meant for
// process shutdown.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[int]*entry)
	r.mu.Unlock()

	var errs []error
	for port, e := range entries {
		select {
		case <-e.ready:
		case <-ctx.Done():
			return ctx.Err()
		}
		if e.err != nil {
			continue
		}
		if err := e.sink.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close sink on port %d: %w", port, err))
		}
	}
	return errors.Join(errs...)
}
