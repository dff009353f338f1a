package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xmhha/livereload/pkg/config"
	"github.com/0xmhha/livereload/pkg/devloop"
	"github.com/0xmhha/livereload/pkg/history"
	"github.com/0xmhha/livereload/pkg/inject"
	"github.com/0xmhha/livereload/pkg/logger"
	"github.com/0xmhha/livereload/pkg/pathfilter"
	"github.com/0xmhha/livereload/pkg/plugin"
	"github.com/0xmhha/livereload/pkg/registry"
	"github.com/0xmhha/livereload/pkg/snapshot"
	"github.com/0xmhha/livereload/pkg/watcher"
)

// shutdownTimeout bounds the notification server shutdown.
const shutdownTimeout = 5 * time.Second

// watchCommand runs the dev loop over a build output directory.
type watchCommand struct {
	dir        string
	port       int
	delay      int
	targets    []string
	ignore     []string
	marker     string
	configPath string
}

// Execute runs the watch command.
func (c *watchCommand) Execute() error {
	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := c.apply(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Output: cfg.Logging.Output,
		Format: cfg.Logging.Format,
	})

	openHistory, closeHistory, err := historyFunc(cfg, log)
	if err != nil {
		return err
	}
	defer closeHistory()

	p, err := plugin.New(pluginConfig(cfg.Plugin), plugin.Deps{
		History: openHistory,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("failed to create plugin: %w", err)
	}

	exclude := append([]string{}, watchIgnore(cfg)...)
	if cfg.Watch.FailureMarker != "" {
		exclude = append(exclude, cfg.Watch.FailureMarker)
	}

	scanner, err := snapshot.New(snapshot.Config{
		Dir:     cfg.Watch.Dir,
		Targets: cfg.Watch.Targets,
		Exclude: exclude,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}

	w, err := watcher.New(watcher.Config{
		DebounceInterval: cfg.Watch.Debounce,
		Ignore:           watchIgnore(cfg),
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			log.Warn("failed to close watcher", "error", closeErr)
		}
	}()

	loop, err := devloop.New(devloop.Config{
		FailureMarker: cfg.Watch.FailureMarker,
	}, w, scanner, p, log)
	if err != nil {
		return fmt.Errorf("failed to create dev loop: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := loop.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := registry.Default().Close(shutdownCtx); err != nil {
		log.Warn("failed to stop notification server", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	stats := loop.Stats()
	log.Info("stopped", "builds", stats.Builds, "failures", stats.Failures)
	return nil
}

// apply overrides cfg with the flags that were given.
func (c *watchCommand) apply(cfg *config.Config) error {
	if c.dir != "" {
		cfg.Watch.Dir = c.dir
	}
	if c.port >= 0 {
		cfg.Plugin.Port = c.port
	}
	if c.delay >= 0 {
		cfg.Plugin.Delay = c.delay
	}
	if len(c.targets) > 0 {
		cfg.Watch.Targets = c.targets
	}
	if c.marker != "" {
		cfg.Watch.FailureMarker = c.marker
	}
	if len(c.ignore) > 0 {
		spec, err := pathfilter.ParseIgnore(c.ignore)
		if err != nil {
			return fmt.Errorf("invalid -ignore: %w", err)
		}
		cfg.Plugin.Ignore = spec
	}
	return nil
}

// watchIgnore returns the configured watch ignore patterns, or the
// watcher defaults when none are configured.
func watchIgnore(cfg *config.Config) []string {
	if len(cfg.Watch.Ignore) == 0 {
		return watcher.DefaultIgnore
	}
	return cfg.Watch.Ignore
}

// historyFunc returns the fingerprint history opener for cfg. Without a
// database path the plugin keeps its history in memory.
func historyFunc(cfg *config.Config, log logger.Logger) (plugin.HistoryFunc, func(), error) {
	if cfg.Storage.DBPath == "" {
		return nil, func() {}, nil
	}

	if cfg.Plugin.InstanceID == "" {
		log.Warn("fingerprint history is keyed by instance id; set plugin.instance_id to reuse it across runs")
	}

	db, err := history.Open(history.Config{DBPath: cfg.Storage.DBPath}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}

	open := func(instanceID string) (history.Store, error) {
		return history.NewBoltStore(db, instanceID)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close history", "error", err)
		}
	}
	return open, closeDB, nil
}

// pluginConfig converts the file configuration into plugin settings.
func pluginConfig(pc config.PluginConfig) plugin.Config {
	return plugin.Config{
		InstanceID:    pc.InstanceID,
		Port:          pc.Port,
		Hostname:      pc.Hostname,
		Protocol:      pc.Protocol,
		Quiet:         pc.Quiet,
		AppendScript:  pc.AppendScript,
		Delay:         pc.DelayDuration(),
		Ignore:        pc.Ignore,
		UseSourceHash: pc.UseSourceHash,
	}
}

// scriptCommand prints the autoload script.
type scriptCommand struct {
	port       int
	hostname   string
	protocol   string
	instanceID string
	configPath string
}

// Execute runs the script command.
func (c *scriptCommand) Execute() error {
	cfg, err := config.NewLoader(c.configPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Print(inject.Script(c.options(cfg.Plugin)))
	return nil
}

// options merges the flags over the plugin configuration.
func (c *scriptCommand) options(pc config.PluginConfig) inject.Options {
	opts := inject.Options{
		InstanceID: pc.InstanceID,
		Protocol:   pc.Protocol,
		Hostname:   pc.Hostname,
		Port:       pc.Port,
	}

	if c.port >= 0 {
		opts.Port = c.port
	}
	if c.hostname != "" {
		opts.Hostname = c.hostname
	}
	if c.protocol != "" {
		opts.Protocol = c.protocol
	}
	if c.instanceID != "" {
		opts.InstanceID = c.instanceID
	}
	if opts.Port == 0 {
		opts.Port = registry.DefaultPort
	}
	return opts
}
