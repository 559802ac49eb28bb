package ports

import (
	"context"
	"time"
)

// Cache is a small key-value capability for bookkeeping that must survive
// restarts, such as the last push and pull timestamps.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
