// Package storage defines the key-value blob port used for persisted
// collections and its adapters (file system, SQLite, Redis, memory).
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotExist is returned (wrapped) by Read when a key has never been written.
var ErrNotExist = errors.New("storage: key does not exist")

// Provider is the interface for blob operations. Keys are flat names
// such as "savedEmails" or "logo.png".
type Provider interface {
	// Read returns the blob stored under key.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write replaces the blob stored under key.
	Write(ctx context.Context, key string, data []byte) error
	// Has reports whether key holds a blob.
	Has(ctx context.Context, key string) (bool, error)
}

// Backend is a Provider owning resources that must be released.
type Backend interface {
	Provider
	Close() error
}

// Drivers accepted by Open.
const (
	DriverFS     = "fs"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and parameterises a backend.
type Options struct {
	Driver   string
	Path     string // directory for fs, database file for sqlite
	RedisURL string
	Prefix   string // key prefix for redis
}

// Open constructs the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case DriverFS, "":
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create data dir: %w", err)
		}
		return NewFS(opts.Path)
	case DriverSQLite:
		return OpenSQLite(opts.Path)
	case DriverRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.Prefix)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}

// validKey rejects empty keys and anything that could address outside a
// flat namespace.
func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage: key is required")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") || strings.ContainsRune(key, 0) {
		return fmt.Errorf("storage: invalid key: %s", key)
	}
	return nil
}
