package blob

import (
	"context"
	"errors"
)

// Store is the persistence backend contract: async get/set/remove of
// string-keyed blobs. Consumers define this interface, not the backends.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("blob not found")
