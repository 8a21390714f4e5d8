package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Keys persisted for the session
const (
	KeyToken    = "token"
	KeyClientID = "clientId"
)

var bucketSession = []byte("session")

// SessionStore is the client-local persistent key/value storage.
// Values live in BoltDB and are promoted to an in-memory map on access.
type SessionStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	cache map[string]string
}

// NewSessionStore opens the store for serverURL under baseDir.
// An empty baseDir gives a memory-only store (no persistence).
func NewSessionStore(baseDir, serverURL string) (*SessionStore, error) {
	if baseDir == "" {
		return &SessionStore{cache: make(map[string]string)}, nil
	}

	dir := baseDir
	if serverURL != "" {
		dir = filepath.Join(baseDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, cache: make(map[string]string)}, nil
}

// hashServerURL keeps tokens for different servers apart
func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

// Close releases the underlying database
func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the value stored under key
func (s *SessionStore) Get(key string) (string, bool) {
	// Check memory cache first
	s.mu.RLock()
	if v, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return v, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return "", false
	}

	var (
		value string
		found bool
	)
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// v is only valid inside the transaction
			value = string(v)
			found = true
		}
		return nil
	})

	if !found {
		return "", false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()

	return value, true
}

// Set stores value under key
func (s *SessionStore) Set(key, value string) error {
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketSession).Put([]byte(key), []byte(value))
		})
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()

	return nil
}
