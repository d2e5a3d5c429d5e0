// Package localstore provides the durable key-value storage that backs the
// cart and session records. Values are opaque bytes; callers own encoding.
package localstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
)

// Keys of the records persisted by the storefront.
const (
	CartKey    = "cart"
	SessionKey = "user"
)

// Repository stores one value per key. Get returns domain.ErrNotFound for
// missing keys; Delete of a missing key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendPebble   = "pebble"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Options configures Open.
type Options struct {
	Backend   string
	Dir       string
	DSN       string
	Namespace string
	Migrate   bool // postgres only: apply migrations on open
	Logger    *log.Logger
}

// Open builds the repository selected by opts.Backend.
func Open(ctx context.Context, opts Options) (Repository, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendMemory:
		return NewMemory(), nil
	case "", BackendPebble:
		return NewPebble(opts.Dir, logger)
	case BackendBadger:
		return NewBadger(opts.Dir, logger)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.DSN, opts.Namespace, opts.Migrate, logger)
	default:
		return nil, fmt.Errorf("localstore: unknown backend %q", opts.Backend)
	}
}
