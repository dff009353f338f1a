// Package history stores the last seen content fingerprint of every output
// file, per plugin instance.
//
// Two implementations are provided: an in-memory store, used when no
// database is configured, and a BoltDB store that keeps fingerprints across
// restarts for instances with a stable id.
//
// Example usage:
//
//	db, err := history.Open(history.Config{DBPath: "~/.config/livereload/history.db"}, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	store, err := history.NewBoltStore(db, instanceID)
//	if err != nil {
//	    log.Fatal(err)
//	}
package history

import (
	"time"

	"github.com/0xmhha/livereload/pkg/fingerprint"
)

// Store provides persistence for file fingerprints.
type Store interface {
	// Get returns the last stored fingerprint for path. ok is false when
	// no fingerprint has been stored yet.
	Get(path string) (digest fingerprint.Digest, ok bool, err error)

	// Set stores the fingerprint for path, replacing any previous one.
	Set(path string, digest fingerprint.Digest) error
}

// Config contains database settings.
type Config struct {
	// DBPath is the BoltDB file path. "~" is expanded.
	DBPath string

	// Timeout is how long to wait for the database file lock.
	// Default: 1s.
	Timeout time.Duration
}
