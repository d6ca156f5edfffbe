// Package storage provides the single key-value store the café persists its
// documents in: the table list, the product catalog and the pricing rules.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/config"
)

var ErrNotFound = errors.New("storage: key not found")

// KV is a string-by-key store. Implementations must be safe for use from
// multiple goroutines.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open returns the backend named by cfg.Driver.
func Open(cfg config.StorageConfig) (KV, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "postgres":
		return OpenPostgres(cfg.DSN)
	case "badger":
		return OpenBadger(cfg.Path)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
