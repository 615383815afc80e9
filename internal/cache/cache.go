// Package cache is a TTL key-value store used to memoize market data responses.
package cache

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Cache stores opaque values under string keys until their TTL expires.
type Cache interface {
	// Get returns the value for key. A missing or expired key is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl. A ttl <= 0 stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config selects and configures a Cache implementation.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// NewFromConfig returns a RedisCache when an address is configured, else a MemoryCache.
// An unreachable Redis falls back to memory.
func NewFromConfig(cfg Config) Cache {
	if cfg.RedisAddr == "" {
		return NewMemoryCache()
	}
	rc, err := NewRedisCache(cfg)
	if err != nil {
		log.WithError(err).Warnf("redis cache unavailable at %s, using memory cache", cfg.RedisAddr)
		return NewMemoryCache()
	}
	return rc
}
