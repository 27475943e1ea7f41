// Package store provides the durable key-value backends that bankroll
// ledgers write through to.
package store

import (
	"context"
	"fmt"
	"strings"
)

// Store is a durable map of string keys to integer values.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (int64, bool, error)
	// PutAll writes every value atomically.
	PutAll(ctx context.Context, values map[string]int64) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open opens the named backend at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return OpenFile(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
