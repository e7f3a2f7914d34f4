// Package storage provides durable key/value storage for small client state
// such as the recent-question history.
//
// Three backends are available: JSON files in a data directory (the default),
// a SQLite database, and an in-memory map. None of them lock across
// processes; the last writer wins.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Get when no value is stored under the key
var ErrNotFound = errors.New("storage: key not found")

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Storage defines the interface for key/value storage backends.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Open creates a storage backend by name rooted at dataDir
func Open(backend, dataDir string) (Storage, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStorage(dataDir), nil
	case BackendSQLite:
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return OpenSQLite(filepath.Join(dataDir, "gemchat.db"))
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}
