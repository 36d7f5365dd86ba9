package docbind

import (
	"context"
	"time"
)

// Cache is a client-side read-through document cache consulted by
// non-volatile Get calls. Volatile reads always bypass it; writes
// refresh it and deletes invalidate it. Implementations must degrade
// gracefully: a cache failure is a miss, never an operation failure.
type Cache interface {
	Get(ctx context.Context, index, id string) (Params, bool)
	Set(ctx context.Context, index, id string, doc Params)
	Invalidate(ctx context.Context, index, id string)
}

// NoOpCache is a cache that stores nothing
type NoOpCache struct{}

func (c *NoOpCache) Get(ctx context.Context, index, id string) (Params, bool) { return nil, false }
func (c *NoOpCache) Set(ctx context.Context, index, id string, doc Params)    {}
func (c *NoOpCache) Invalidate(ctx context.Context, index, id string)         {}

// CacheConfig holds configuration for document caches
type CacheConfig struct {
	TTL       time.Duration // entry lifetime, 0 = DefaultCacheTTL
	KeyPrefix string        // key namespace, "" = DefaultCacheKeyPrefix
}

// Cache configuration defaults
const (
	DefaultCacheTTL       = 5 * time.Minute
	DefaultCacheKeyPrefix = "docbind:doc:"
)
