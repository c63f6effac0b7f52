package snapshot

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no snapshot exists under the requested key.
var ErrNotFound = errors.New("snapshot not found")

// Store is the durable key-value byte store the merger persists into. The
// server backs it with SQLite; a browser host would back it with
// localStorage.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
