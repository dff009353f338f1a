// Package plugin drives live reload for one build pipeline.
//
// A Plugin reacts to three host events. When a watch run starts it acquires
// a notification sink for its port from the registry. When a build
// finishes it decides whether the build changed anything relevant and, if
// so, schedules a reload of exactly the changed files. When a build fails
// it forgets the last build identity so the next success always reloads.
package plugin

import (
	"context"
	"time"

	"github.com/0xmhha/livereload/pkg/build"
	"github.com/0xmhha/livereload/pkg/history"
	"github.com/0xmhha/livereload/pkg/logger"
	"github.com/0xmhha/livereload/pkg/pathfilter"
	"github.com/0xmhha/livereload/pkg/registry"
)

// Hooks is the lifecycle contract between a build host and a plugin.
type Hooks interface {
	// OnWatchStart is called when a watch run starts.
	OnWatchStart(ctx context.Context) error

	// OnBuildDone is called after every successful build.
	OnBuildDone(o *build.Outcome)

	// OnBuildFailed is called after every failed build.
	OnBuildFailed()
}

// State is the lifecycle state of a Plugin.
type State int

const (
	// StateIdle means no sink has been acquired.
	StateIdle State = iota

	// StateStarting means a sink is being acquired.
	StateStarting

	// StateActive means the plugin holds a running sink.
	StateActive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Config contains plugin settings. It is copied at construction.
type Config struct {
	// InstanceID identifies this plugin. Empty means a random id.
	InstanceID string

	// Port of the notification server. 0 means pick one on start,
	// preferring registry.DefaultPort.
	Port int

	// Hostname used by the browser to reach the server.
	// Empty means the page's own hostname.
	Hostname string

	// Protocol used by the browser to reach the server ("http", "https").
	// Empty means the page's own protocol.
	Protocol string

	// Quiet demotes routine messages to debug level. A successful listen is
	// still reported.
	Quiet bool

	// AppendScript enables AutoloadScript.
	AppendScript bool

	// Delay postpones every notification.
	Delay time.Duration

	// Ignore excludes matching paths from notifications.
	Ignore pathfilter.IgnoreSpec

	// UseSourceHash suppresses files whose content did not change.
	UseSourceHash bool
}

// HistoryFunc opens the fingerprint history of an instance.
type HistoryFunc func(instanceID string) (history.Store, error)

// Deps are the collaborators of a Plugin. Zero values get defaults.
type Deps struct {
	// Registry shares sinks between instances.
	// Default: registry.Default().
	Registry *registry.Registry

	// Ports resolves an unassigned port.
	// Default: registry.FreePortResolver{}.
	Ports registry.PortResolver

	// NewSink builds the sink for a port when none is registered.
	// Default: a LiveReload websocket server.
	NewSink registry.Factory

	// History opens the fingerprint history.
	// Default: an in-memory store.
	History HistoryFunc

	// Logger receives lifecycle messages.
	// Default: logger.Noop().
	Logger logger.Logger
}
