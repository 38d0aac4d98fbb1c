package utils

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = time.Hour
	cacheOpTimeout  = 2 * time.Second

	// invalidationTTL bounds how long an invalidation marker outlives the entry it removed.
	// It must exceed the time between a reader loading from the database and writing back.
	invalidationTTL   = time.Minute
	invalidatedSuffix = ":invalidated"
)

// Cache is a small JSON cache over Redis. A nil *Cache is valid and behaves as always-miss.
type Cache struct {
	rc *redis.Client
}

// NewCache wraps rc; it returns nil when rc is nil so callers can pass the result through unconditionally.
func NewCache(rc *redis.Client) *Cache {
	if rc == nil {
		return nil
	}
	return &Cache{rc: rc}
}

// GetJSON loads key into v. It reports false on miss, Redis error or undecodable data.
func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) bool {
	if c == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	b, err := c.rc.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			Sugar.Debugf("cache get failed key=%s err=%v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		Sugar.Warnf("cache entry undecodable key=%s err=%v", key, err)
		return false
	}
	return true
}

// SetJSON marshals v and stores it with ttl (default one hour).
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := c.rc.Set(ctx, key, b, ttl).Err(); err != nil {
		Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// Delete removes keys; missing keys are ignored.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := c.rc.Del(ctx, keys...).Err(); err != nil {
		Sugar.Warnf("cache delete failed keys=%v err=%v", keys, err)
	}
}

// Invalidate evicts keys and leaves a short-lived marker for each, so that a
// SetJSONGuarded racing with the eviction removes the value it just wrote.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	// Markers go in before the delete so a concurrent writer sees one or the other.
	_, err := c.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Set(ctx, key+invalidatedSuffix, "1", invalidationTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		Sugar.Warnf("cache invalidate failed keys=%v err=%v", keys, err)
	}
}

// SetJSONGuarded stores v like SetJSON, then drops it again when key was
// invalidated meanwhile. Use it for read-through writes of database rows.
func (c *Cache) SetJSONGuarded(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	c.SetJSON(ctx, key, v, ttl)

	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	n, err := c.rc.Exists(ctx, key+invalidatedSuffix).Result()
	if err != nil {
		// Unknown state: do not leave a possibly stale entry behind.
		Sugar.Debugf("cache marker check failed key=%s err=%v", key, err)
		c.rc.Del(ctx, key)
		return
	}
	if n > 0 {
		c.rc.Del(ctx, key)
	}
}
