package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type counterEntry struct {
	n         int64
	expiresAt time.Time
}

// MemoryCache is the default backend when no Redis address is configured.
// Expired entries and counters are dropped lazily on access and swept by a
// janitor loop.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	counters map[string]counterEntry
	stop     chan struct{}
	done     chan struct{}
}

func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	c := &MemoryCache{
		entries:  make(map[string]memoryEntry),
		counters: make(map[string]counterEntry),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go c.sweep(sweepInterval)
	return c
}

func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Get(key string, dest interface{}) error {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return ErrCacheMiss
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	delete(c.counters, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Exists(key string) (bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) Incr(key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.counters[key]
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		entry = counterEntry{}
	}
	entry.n++
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	} else {
		entry.expiresAt = time.Time{}
	}
	c.counters[key] = entry
	return entry.n, nil
}

func (c *MemoryCache) Health() error {
	return nil
}

func (c *MemoryCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"backend":  "memory",
		"entries":  len(c.entries),
		"counters": len(c.counters),
	}
}

func (c *MemoryCache) Close() error {
	close(c.stop)
	<-c.done
	return nil
}

func (c *MemoryCache) sweep(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, entry := range c.entries {
				if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			for key, counter := range c.counters {
				if !counter.expiresAt.IsZero() && now.After(counter.expiresAt) {
					delete(c.counters, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
