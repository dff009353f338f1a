package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/0xmhha/livereload/pkg/build"
	"github.com/0xmhha/livereload/pkg/changeset"
	"github.com/0xmhha/livereload/pkg/history"
	"github.com/0xmhha/livereload/pkg/inject"
	"github.com/0xmhha/livereload/pkg/logger"
	"github.com/0xmhha/livereload/pkg/notify"
	"github.com/0xmhha/livereload/pkg/registry"
	"github.com/0xmhha/livereload/pkg/server"
)

// Plugin implements Hooks for one instance.
type Plugin struct {
	id     string
	config Config

	registry *registry.Registry
	ports    registry.PortResolver
	newSink  registry.Factory

	logger logger.Logger
	quiet  logger.Logger

	tracker   *build.Tracker
	resolver  *changeset.Resolver
	scheduler *notify.Scheduler

	// startMu serializes OnWatchStart.
	startMu sync.Mutex
	// buildMu serializes OnBuildDone and OnBuildFailed.
	buildMu sync.Mutex

	mu       sync.Mutex
	state    State
	degraded bool
	port     int
	sink     registry.Sink
}

var _ Hooks = (*Plugin)(nil)

// New creates an idle plugin.
//
// Parameters:
//   - cfg: Plugin configuration
//   - deps: Collaborators; zero fields get defaults
//
// Returns:
//   - Plugin in StateIdle
//   - Error if the configuration is invalid or the history cannot be opened
func New(cfg Config, deps Deps) (*Plugin, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, cfg.Port)
	}
	if cfg.Delay < 0 {
		return nil, ErrNegativeDelay
	}

	id := cfg.InstanceID
	if id == "" {
		id = uuid.NewString()
	}
	cfg.InstanceID = id

	log := deps.Logger
	if log == nil {
		log = logger.Noop()
	}
	log = log.With("instance", id)

	reg := deps.Registry
	if reg == nil {
		reg = registry.Default()
	}

	ports := deps.Ports
	if ports == nil {
		ports = registry.FreePortResolver{}
	}

	newSink := deps.NewSink
	if newSink == nil {
		newSink = func(int) registry.Sink {
			return server.New(server.Config{}, log)
		}
	}

	var store history.Store
	if deps.History != nil {
		s, err := deps.History(id)
		if err != nil {
			return nil, fmt.Errorf("failed to open fingerprint history: %w", err)
		}
		store = s
	}

	return &Plugin{
		id:       id,
		config:   cfg,
		registry: reg,
		ports:    ports,
		newSink:  newSink,
		logger:   log,
		quiet:    logger.Quiet(log, cfg.Quiet),
		tracker:  &build.Tracker{},
		resolver: changeset.New(changeset.Config{
			Ignore:        cfg.Ignore,
			UseSourceHash: cfg.UseSourceHash,
		}, store, log),
		scheduler: notify.NewScheduler(cfg.Delay, log),
		state:     StateIdle,
		port:      cfg.Port,
	}, nil
}

// ID returns the instance id.
func (p *Plugin) ID() string {
	return p.id
}

// Port returns the configured or resolved port. It is 0 until an
// unassigned port has been resolved.
func (p *Plugin) Port() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.port
}

// State returns the lifecycle state.
func (p *Plugin) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Degraded reports whether notifications are disabled after a failed bind.
func (p *Plugin) Degraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degraded
}

// Sink returns the adopted sink, if any.
func (p *Plugin) Sink() (registry.Sink, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sink, p.sink != nil
}

// OnWatchStart implements Hooks.OnWatchStart.
//
// It is idempotent. A sink that cannot bind disables notifications for
// the lifetime of the plugin; that is logged and not returned. Only
// context errors are returned, leaving the plugin idle.
func (p *Plugin) OnWatchStart(ctx context.Context) error {
	p.startMu.Lock()
	defer p.startMu.Unlock()

	p.mu.Lock()
	if p.state == StateActive || p.degraded {
		p.mu.Unlock()
		return nil
	}
	p.state = StateStarting
	port := p.port
	p.mu.Unlock()

	if port == 0 {
		resolved, err := p.ports.Resolve(ctx, registry.DefaultPort)
		if err != nil {
			return p.startFailed(ctx, port, err)
		}
		port = resolved

		p.mu.Lock()
		p.port = port
		p.mu.Unlock()
	}

	sink, created, err := p.registry.AcquireOrCreate(ctx, port, p.newSink)
	if err != nil {
		return p.startFailed(ctx, port, err)
	}

	p.mu.Lock()
	p.sink = sink
	p.state = StateActive
	p.mu.Unlock()

	if created {
		p.logger.Info("live reload listening", "port", port)
	} else {
		p.quiet.Info("live reload sharing server", "port", port)
	}
	return nil
}

// startFailed handles a failed start. Context errors return the plugin to
// idle; anything else disables notifications.
func (p *Plugin) startFailed(ctx context.Context, port int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
		return ctxErr
	}

	p.mu.Lock()
	p.state = StateIdle
	p.degraded = true
	p.mu.Unlock()

	if errors.Is(err, server.ErrAddressInUse) {
		p.quiet.Warn("live reload disabled", "port", port, "error", err)
	} else {
		p.logger.Error("live reload disabled", "port", port, "error", err)
	}
	return nil
}

// OnBuildDone implements Hooks.OnBuildDone.
func (p *Plugin) OnBuildDone(o *build.Outcome) {
	if o == nil {
		return
	}

	p.buildMu.Lock()
	defer p.buildMu.Unlock()

	p.mu.Lock()
	sink := p.sink
	active := p.state == StateActive
	p.mu.Unlock()

	if !active || sink == nil {
		p.logger.Debug("build ignored, live reload not active")
		return
	}

	if !p.tracker.HasChanged(o) {
		p.logger.Debug("build unchanged", "identity", o.Identity)
		return
	}

	include := p.resolver.Resolve(o)
	if len(include) == 0 {
		p.logger.Debug("no relevant files changed", "identity", o.Identity)
		return
	}

	p.tracker.Commit(o)
	p.scheduler.Schedule(sink, include)
}

// OnStats normalizes a host-specific build result and handles it like
// OnBuildDone.
func (p *Plugin) OnStats(stats any) error {
	o, err := build.Normalize(stats)
	if err != nil {
		return err
	}
	p.OnBuildDone(o)
	return nil
}

// OnBuildFailed implements Hooks.OnBuildFailed.
func (p *Plugin) OnBuildFailed() {
	p.buildMu.Lock()
	defer p.buildMu.Unlock()

	p.tracker.Reset()
	p.logger.Debug("build failed, identities reset")
}

// AutoloadScript returns the snippet that loads the LiveReload client,
// when AppendScript is set and the plugin holds a sink.
func (p *Plugin) AutoloadScript() (string, bool) {
	if !p.config.AppendScript {
		return "", false
	}

	p.mu.Lock()
	active := p.state == StateActive && p.sink != nil
	port := p.port
	p.mu.Unlock()

	if !active {
		return "", false
	}

	return inject.Script(inject.Options{
		InstanceID: p.id,
		Protocol:   p.config.Protocol,
		Hostname:   p.config.Hostname,
		Port:       port,
	}), true
}
