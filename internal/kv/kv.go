// Package kv holds the storage backends behind the persistent store. Each key
// maps to one opaque document; writers are not coordinated and the last write wins.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Backend is a flat key-value document store.
type Backend interface {
	// Get returns ErrNotFound when the key has never been written or was deleted.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open builds the backend named by driver. path is ignored for memory.
func Open(driver, path string) (Backend, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverFile:
		return NewFile(path)
	case DriverSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", driver)
	}
}
