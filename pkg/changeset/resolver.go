// Package changeset resolves the list of file paths a build should report to
// live reload clients.
//
// Files pass through the ignore filter first. With content fingerprinting
// enabled, files whose content is byte-identical to the last seen version
// are dropped as well.
package changeset

import (
	"github.com/0xmhha/livereload/pkg/build"
	"github.com/0xmhha/livereload/pkg/fingerprint"
	"github.com/0xmhha/livereload/pkg/history"
	"github.com/0xmhha/livereload/pkg/logger"
	"github.com/0xmhha/livereload/pkg/pathfilter"
)

// Config contains resolver settings.
type Config struct {
	// Ignore excludes matching paths.
	Ignore pathfilter.IgnoreSpec

	// UseSourceHash enables content fingerprint deduplication.
	UseSourceHash bool
}

// Resolver produces change sets for build outcomes. It keeps the
// fingerprint history of one plugin instance.
type Resolver struct {
	config  Config
	history history.Store
	logger  logger.Logger
}

// New creates a Resolver. A nil store gets an empty in-memory one.
func New(cfg Config, store history.Store, log logger.Logger) *Resolver {
	if store == nil {
		store = history.NewMemoryStore()
	}
	return &Resolver{
		config:  cfg,
		history: store,
		logger:  log,
	}
}

// Resolve returns the relevant paths of o. The result is never nil.
// Callers must treat it as a set; order follows o.Files.
func (r *Resolver) Resolve(o *build.Outcome) []string {
	include := make([]string, 0, len(o.Files))

	for _, f := range o.Files {
		if !pathfilter.IsRelevant(f.Path, f.Emitted, r.config.Ignore) {
			continue
		}
		if !r.contentChanged(f) {
			continue
		}
		include = append(include, f.Path)
	}

	return include
}

// contentChanged reports whether f must be reported under fingerprint mode.
// The stored fingerprint is always replaced with the fresh one.
func (r *Resolver) contentChanged(f build.FileRecord) bool {
	if !r.config.UseSourceHash {
		return true
	}

	if f.Content == nil {
		r.logger.Debug("no content accessor, treating file as changed",
			"path", f.Path)
		return true
	}

	data, err := f.Content()
	if err != nil {
		r.logger.Warn("failed to read file content, treating file as changed",
			"path", f.Path,
			"error", err)
		return true
	}

	digest := fingerprint.Sum(data)

	previous, seen, err := r.history.Get(f.Path)
	if err != nil {
		r.logger.Warn("failed to read fingerprint history",
			"path", f.Path,
			"error", err)
		seen = false
	}

	if err := r.history.Set(f.Path, digest); err != nil {
		r.logger.Warn("failed to store fingerprint",
			"path", f.Path,
			"error", err)
	}

	return !seen || previous != digest
}
