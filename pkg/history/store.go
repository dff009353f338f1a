package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/0xmhha/livereload/pkg/fingerprint"
	"github.com/0xmhha/livereload/pkg/logger"
)

var (
	bucketFingerprints = []byte("fingerprints") // instance id -> (path -> digest)
)

// Open opens (creating if needed) the BoltDB file described by cfg.
func Open(cfg Config, log logger.Logger) (*bolt.DB, error) {
	if cfg.DBPath == "" {
		return nil, ErrEmptyDBPath
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	dbPath := expandHome(cfg.DBPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketFingerprints)
		return createErr
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization error",
				"error", closeErr)
		}
		return nil, fmt.Errorf("failed to create fingerprints bucket: %w", err)
	}

	log.Info("fingerprint history opened", "db_path", dbPath)
	return db, nil
}

// boltStore implements Store using one nested BoltDB bucket per instance.
type boltStore struct {
	db       *bolt.DB
	instance []byte
}

// NewBoltStore creates a store scoped to instanceID inside db.
func NewBoltStore(db *bolt.DB, instanceID string) (Store, error) {
	if instanceID == "" {
		return nil, ErrEmptyInstanceID
	}

	instance := []byte(instanceID)
	if err := db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(bucketFingerprints)
		if err != nil {
			return err
		}
		_, err = root.CreateBucketIfNotExists(instance)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to create instance bucket: %w", err)
	}

	return &boltStore{
		db:       db,
		instance: instance,
	}, nil
}

// Get implements Store.Get.
func (s *boltStore) Get(path string) (fingerprint.Digest, bool, error) {
	var (
		digest fingerprint.Digest
		ok     bool
	)

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketFingerprints).Bucket(s.instance)
		if b == nil {
			return nil
		}
		if data := b.Get([]byte(path)); data != nil {
			digest = fingerprint.Digest(data)
			ok = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read fingerprint: %w", err)
	}

	return digest, ok, nil
}

// Set implements Store.Set.
func (s *boltStore) Set(path string, digest fingerprint.Digest) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(bucketFingerprints).CreateBucketIfNotExists(s.instance)
		if err != nil {
			return fmt.Errorf("failed to open instance bucket: %w", err)
		}
		if putErr := b.Put([]byte(path), []byte(digest)); putErr != nil {
			return fmt.Errorf("failed to store fingerprint: %w", putErr)
		}
		return nil
	})
}

// memoryStore implements Store using an in-memory map.
type memoryStore struct {
	digests map[string]fingerprint.Digest
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		digests: make(map[string]fingerprint.Digest),
	}
}

// Get implements Store.Get.
func (s *memoryStore) Get(path string) (fingerprint.Digest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	digest, ok := s.digests[path]
	return digest, ok, nil
}

// Set implements Store.Set.
func (s *memoryStore) Set(path string, digest fingerprint.Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.digests[path] = digest
	return nil
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
