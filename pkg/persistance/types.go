package persistance

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Storage when no snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

// Storage is the raw session-scoped key-value store behind the adapter.
// Implementations: RedisStorage for the service, MemoryStorage for tests.
type Storage interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
