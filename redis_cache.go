package docbind

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on top of Redis. Documents are stored as
// JSON under "{prefix}{index}/{id}" with a TTL, so a warm cache serves
// repeated non-volatile reads without a round trip to the Index
// Service. Any Redis failure is treated as a miss.
type RedisCache struct {
	redis     *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    Logger
}

// NewRedisCache creates a Redis-backed document cache
func NewRedisCache(client *redis.Client, config CacheConfig) *RedisCache {
	if config.TTL == 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultCacheKeyPrefix
	}
	return &RedisCache{
		redis:     client,
		ttl:       config.TTL,
		keyPrefix: config.KeyPrefix,
		logger:    &NoOpLogger{},
	}
}

// SetLogger updates the logger for this cache
func (c *RedisCache) SetLogger(logger Logger) {
	c.logger = logger
}

// Get returns a cached document, or a miss on any failure
func (c *RedisCache) Get(ctx context.Context, index, id string) (Params, bool) {
	data, err := c.redis.Get(ctx, c.key(index, id)).Bytes()
	if err != nil {
		return nil, false
	}
	var doc Params
	if err := json.Unmarshal(data, &doc); err != nil {
		c.logger.Warn("corrupt cache entry dropped", "index", index, "id", id)
		c.redis.Del(ctx, c.key(index, id))
		return nil, false
	}
	return doc, true
}

// Set stores a document under the configured TTL
func (c *RedisCache) Set(ctx context.Context, index, id string, doc Params) {
	data, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.key(index, id), data, c.ttl).Err(); err != nil {
		c.logger.Debug("cache set failed", "index", index, "id", id, "error", err)
	}
}

// Invalidate drops a cached document
func (c *RedisCache) Invalidate(ctx context.Context, index, id string) {
	if err := c.redis.Del(ctx, c.key(index, id)).Err(); err != nil {
		c.logger.Debug("cache invalidate failed", "index", index, "id", id, "error", err)
	}
}

func (c *RedisCache) key(index, id string) string {
	return c.keyPrefix + index + "/" + id
}

// RedisOptions returns redis.Options populated from standard environment variables.
//
// Environment variables read (with defaults):
//   - REDIS_ADDR (default: "localhost:6379")
//   - REDIS_PASSWORD (default: "")
//   - REDIS_DB (default: 0)
//
// Convenience for 12-factor deployments; construct redis.Options
// directly for cluster, sentinel or TLS setups.
func RedisOptions() *redis.Options {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	return &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}
}

// getEnvAsInt reads an integer environment variable with a default fallback.
func getEnvAsInt(key string, defaultVal int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultVal
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultVal
	}

	return value
}
