package history

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/0xmhha/livereload/pkg/fingerprint"
	"github.com/0xmhha/livereload/pkg/logger"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	if _, ok, err := s.Get("a.js"); err != nil || ok {
		t.Fatalf("Get() on empty store = ok %v, err %v", ok, err)
	}

	want := fingerprint.Sum([]byte("asdf"))
	if err := s.Set("a.js", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := s.Get("a.js")
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if got != want {
		t.Errorf("Get() = %s, want %s", got, want)
	}
}

func TestBoltStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	db, err := Open(Config{DBPath: dbPath}, logger.Noop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	s1, err := NewBoltStore(db, "instance-1")
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	s2, err := NewBoltStore(db, "instance-2")
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}

	digest := fingerprint.Sum([]byte("asdf"))
	if err := s1.Set("a.js", digest); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if got, ok, _ := s1.Get("a.js"); !ok || got != digest {
		t.Errorf("s1.Get() = %s, %v", got, ok)
	}
	if _, ok, _ := s2.Get("a.js"); ok {
		t.Error("instances must not share fingerprints")
	}

	// Fingerprints survive reopening for the same instance id.
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	db, err = Open(Config{DBPath: dbPath}, logger.Noop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close() // nolint:errcheck

	s1, err = NewBoltStore(db, "instance-1")
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	if got, ok, _ := s1.Get("a.js"); !ok || got != digest {
		t.Errorf("after reopen Get() = %s, %v", got, ok)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(Config{}, logger.Noop()); !errors.Is(err, ErrEmptyDBPath) {
		t.Errorf("Open() error = %v, want ErrEmptyDBPath", err)
	}

	db, err := Open(Config{DBPath: filepath.Join(t.TempDir(), "h.db")}, logger.Noop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() // nolint:errcheck

	if _, err := NewBoltStore(db, ""); !errors.Is(err, ErrEmptyInstanceID) {
		t.Errorf("NewBoltStore() error = %v, want ErrEmptyInstanceID", err)
	}
}
