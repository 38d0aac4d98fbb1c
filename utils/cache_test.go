package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

type cachedItem struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func TestCacheRoundTrip(t *testing.T) {
	mr, rc := newTestRedis(t)
	c := NewCache(rc)
	ctx := context.Background()

	c.SetJSON(ctx, "k", cachedItem{Name: "a", N: 1}, time.Minute)
	if ttl := mr.TTL("k"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	var got cachedItem
	if !c.GetJSON(ctx, "k", &got) || got.Name != "a" || got.N != 1 {
		t.Fatalf("GetJSON = %+v", got)
	}

	c.Delete(ctx, "k")
	if c.GetJSON(ctx, "k", &got) {
		t.Error("GetJSON hit after Delete")
	}
}

func TestCacheDefaultTTL(t *testing.T) {
	mr, rc := newTestRedis(t)
	NewCache(rc).SetJSON(context.Background(), "k", 1, 0)
	if ttl := mr.TTL("k"); ttl != defaultCacheTTL {
		t.Errorf("TTL = %v, want %v", ttl, defaultCacheTTL)
	}
}

func TestCacheUndecodableEntry(t *testing.T) {
	mr, rc := newTestRedis(t)
	if err := mr.Set("k", "{broken"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var got cachedItem
	if NewCache(rc).GetJSON(context.Background(), "k", &got) {
		t.Error("GetJSON hit on undecodable entry")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	c := NewCache(nil)
	if c != nil {
		t.Fatal("NewCache(nil) returned a cache")
	}
	ctx := context.Background()
	c.SetJSON(ctx, "k", 1, time.Minute)
	c.Delete(ctx, "k")
	var v int
	if c.GetJSON(ctx, "k", &v) {
		t.Error("nil cache reported a hit")
	}
}

func TestCacheFailsOpenWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rc.Close()
	c := NewCache(rc)
	mr.Close()

	var v int
	if c.GetJSON(context.Background(), "k", &v) {
		t.Error("GetJSON hit with redis down")
	}
	c.SetJSON(context.Background(), "k", 1, time.Minute)
}

func TestCacheGuardedWriteLosesToInvalidate(t *testing.T) {
	mr, rc := newTestRedis(t)
	c := NewCache(rc)
	ctx := context.Background()

	c.SetJSON(ctx, "k", cachedItem{Name: "old"}, time.Minute)
	c.Invalidate(ctx, "k")
	if mr.Exists("k") {
		t.Fatal("Invalidate left the entry in place")
	}
	if ttl := mr.TTL("k" + invalidatedSuffix); ttl != invalidationTTL {
		t.Errorf("marker TTL = %v, want %v", ttl, invalidationTTL)
	}

	// A reader that loaded before the invalidation writes back afterwards.
	c.SetJSONGuarded(ctx, "k", cachedItem{Name: "old"}, time.Minute)
	if mr.Exists("k") {
		t.Fatal("stale entry survived a guarded write after Invalidate")
	}

	mr.FastForward(invalidationTTL + time.Second)
	c.SetJSONGuarded(ctx, "k", cachedItem{Name: "new"}, time.Minute)
	var got cachedItem
	if !c.GetJSON(ctx, "k", &got) || got.Name != "new" {
		t.Errorf("guarded write after marker expiry = %+v, want cached new", got)
	}
}

func TestCacheGuardedWriteWithoutMarker(t *testing.T) {
	mr, rc := newTestRedis(t)
	NewCache(rc).SetJSONGuarded(context.Background(), "k", 1, time.Minute)
	if !mr.Exists("k") {
		t.Error("guarded write without marker was dropped")
	}
}
