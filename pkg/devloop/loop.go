package devloop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/0xmhha/livereload/pkg/logger"
	"github.com/0xmhha/livereload/pkg/plugin"
	"github.com/0xmhha/livereload/pkg/snapshot"
	"github.com/0xmhha/livereload/pkg/watcher"
)

// Loop drives plugin hooks from output directory changes.
type Loop struct {
	config  Config
	watcher watcher.Watcher
	scanner snapshot.Scanner
	hooks   plugin.Hooks
	logger  logger.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a dev loop.
//
// Parameters:
//   - cfg: Loop configuration
//   - w: Watcher for the output directory; Run starts it
//   - s: Scanner for the output directory
//   - hooks: Plugin receiving build events
//   - log: Logger instance
//
// Returns:
//   - Configured Loop
//   - Error if the failure marker is invalid
func New(cfg Config, w watcher.Watcher, s snapshot.Scanner, hooks plugin.Hooks, log logger.Logger) (*Loop, error) {
	if cfg.FailureMarker != "" {
		marker := filepath.Clean(cfg.FailureMarker)
		if filepath.IsAbs(marker) || marker == "." || strings.HasPrefix(marker, "..") {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMarker, cfg.FailureMarker)
		}
		cfg.FailureMarker = filepath.ToSlash(marker)
	}

	return &Loop{
		config:  cfg,
		watcher: w,
		scanner: s,
		hooks:   hooks,
		logger:  log,
	}, nil
}

// Run starts the plugin and the watcher and processes builds until ctx is
// cancelled or the watcher fails. Cancellation is not an error.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.hooks.OnWatchStart(ctx); err != nil {
		return fmt.Errorf("failed to start plugin: %w", err)
	}

	if err := l.watcher.Start(ctx, []string{l.scanner.Dir()}); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() {
		if err := l.watcher.Stop(); err != nil && !errors.Is(err, watcher.ErrNotStarted) &&
			!errors.Is(err, watcher.ErrWatcherClosed) {
			l.logger.Warn("failed to stop watcher", "error", err)
		}
	}()

	l.logger.Info("dev loop started", "dir", l.scanner.Dir())

	if !l.config.SkipInitialBuild {
		l.build(nil)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.processBatches(gctx) })
	g.Go(func() error { return l.processErrors(gctx) })

	err := g.Wait()
	l.logger.Info("dev loop stopped")
	return err
}

// Stats returns the build counters.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// processBatches turns watcher batches into builds.
func (l *Loop) processBatches(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case batch, ok := <-l.watcher.Batches():
			if !ok {
				l.logger.Debug("watcher batch channel closed")
				return nil
			}

			l.build(l.relativePaths(batch))
		}
	}
}

// processErrors logs watcher errors and stops the loop when the watcher
// gives up.
func (l *Loop) processErrors(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-l.watcher.Errors():
			if !ok {
				return nil
			}
			if errors.Is(err, watcher.ErrCircuitBreakerOpen) {
				return fmt.Errorf("%w: %v", ErrWatcherFailed, err)
			}
			l.logger.Error("watcher error", "error", err)
		}
	}
}

// build reports one build. changed lists the output-relative paths written
// by it; nil means all files.
func (l *Loop) build(changed []string) {
	if l.failed() {
		l.logger.Info("build failed", "marker", l.config.FailureMarker)
		l.hooks.OnBuildFailed()
		l.record(false)
		return
	}

	outcome, err := l.scanner.Scan(changed)
	if err != nil {
		l.logger.Warn("failed to scan build output", "error", err)
		l.hooks.OnBuildFailed()
		l.record(false)
		return
	}

	l.logger.Debug("build done",
		"identity", outcome.Identity,
		"changed", len(changed))
	l.hooks.OnBuildDone(outcome)
	l.record(true)
}

// failed reports whether the failure marker exists.
func (l *Loop) failed() bool {
	if l.config.FailureMarker == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(l.scanner.Dir(), filepath.FromSlash(l.config.FailureMarker)))
	return err == nil
}

func (l *Loop) record(ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ok {
		l.stats.Builds++
	} else {
		l.stats.Failures++
	}
	l.stats.LastBuild = time.Now()
}

// relativePaths converts batch paths to slash-separated paths relative to
// the output directory, dropping the failure marker.
func (l *Loop) relativePaths(batch watcher.Batch) []string {
	dir := l.scanner.Dir()
	paths := make([]string, 0, len(batch.Events))
	for _, p := range batch.Paths() {
		rel, err := filepath.Rel(dir, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel == l.config.FailureMarker {
			continue
		}
		paths = append(paths, rel)
	}
	return paths
}
