package cache

import (
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheDown = errors.New("cache unavailable")
)

// Cache stores JSON-serialized values with a TTL. Incr maintains a separate
// monotonic counter per key, used for fetch sequence numbers; a positive ttl
// is refreshed on every increment, so idle counters expire instead of
// accumulating forever.
type Cache interface {
	Set(key string, value interface{}, ttl time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	Exists(key string) (bool, error)
	Incr(key string, ttl time.Duration) (int64, error)
	Health() error
	Stats() map[string]interface{}
	Close() error
}
