// Package imagecache is a small capacity-bounded TTL cache for curated
// image payloads. Entries are partitioned by hour bucket so a key naturally
// goes stale at the top of the hour even before its TTL runs out.
package imagecache

import (
	"fmt"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]entry

	now func() time.Time
}

func New(capacity int, ttl time.Duration) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]entry, capacity),
		now:      time.Now,
	}
}

// Key builds the canonical cache key for a category within an hour bucket.
func Key(category string, bucket int64) string {
	return fmt.Sprintf("%s:%d", category, bucket)
}

// HourBucket is the coarse time partition: wall clock divided by one hour.
func HourBucket(t time.Time) int64 {
	return t.Unix() / 3600
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops the entry closest to expiry, which for a fixed TTL is
// also the oldest insertion.
func (c *Cache) evictLocked() {
	var victim string
	var earliest time.Time
	for key, e := range c.entries {
		if victim == "" || e.expiresAt.Before(earliest) {
			victim = key
			earliest = e.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}
