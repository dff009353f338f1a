package registry

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// DefaultPort is the standard LiveReload port, tried first when no port is
// configured.
const DefaultPort = 35729

// PortResolver picks a concrete port for instances without one.
type PortResolver interface {
	Resolve(ctx context.Context, preferred int) (int, error)
}

// FreePortResolver returns preferred if it can be bound on Host, and an
// OS-assigned free port otherwise.
type FreePortResolver struct {
	// Host is the interface to probe. Empty means all interfaces.
	Host string
}

// Resolve implements PortResolver.
func (f FreePortResolver) Resolve(ctx context.Context, preferred int) (int, error) {
	if preferred > 0 {
		if port, err := f.probe(ctx, preferred); err == nil {
			return port, nil
		}
	}

	port, err := f.probe(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoFreePort, err)
	}
	return port, nil
}

// probe binds port briefly and returns the port actually bound.
func (f FreePortResolver) probe(ctx context.Context, port int) (int, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(f.Host, strconv.Itoa(port)))
	if err != nil {
		return 0, err
	}
	defer ln.Close() // nolint:errcheck

	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("unexpected listener address %s", ln.Addr())
	}
	return addr.Port, nil
}
