package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// =============================================================================
// RedisCache
// =============================================================================

func TestRedisCache_SetGetDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisCache(client, 3, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "token:abc", `{"user_id":"1"}`, time.Hour)

	got, ok := c.Get(ctx, "token:abc")
	if !ok || got != `{"user_id":"1"}` {
		t.Fatalf("Get() = %q, %v; want stored value", got, ok)
	}
	if ttl := mr.TTL("token:abc"); ttl != time.Hour {
		t.Errorf("TTL = %v, want %v", ttl, time.Hour)
	}

	if !c.Delete(ctx, "token:abc") {
		t.Fatal("Delete() = false, want true")
	}
	if _, ok := c.Get(ctx, "token:abc"); ok {
		t.Error("Get() after Delete should miss")
	}
}

func TestRedisCache_MissIsNotFailure(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := NewRedisCache(client, 1, time.Minute)

	for i := 0; i < 3; i++ {
		if _, ok := c.Get(context.Background(), "missing"); ok {
			t.Fatal("expected miss")
		}
	}
	if !c.Available() {
		t.Error("cache misses must not open the breaker")
	}
}

func TestRedisCache_BreakerOpensAndRecovers(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisCache(client, 2, time.Minute)
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	mr.Close()

	c.Set(ctx, "k", "v", time.Minute)
	if !c.Available() {
		t.Fatal("breaker should stay closed below threshold")
	}
	c.Set(ctx, "k", "v", time.Minute)
	if c.Available() {
		t.Fatal("breaker should open at threshold")
	}

	// Open breaker short-circuits without touching redis.
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Get() with open breaker should miss")
	}

	now = now.Add(2 * time.Minute)
	if !c.Available() {
		t.Error("breaker should close after cooldown")
	}
}

func TestRedisCache_DeleteIgnoresOpenBreaker(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewRedisCache(client, 1, time.Minute)
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if err := mr.Set("token:abc", "cached"); err != nil {
		t.Fatal(err)
	}

	mr.SetError("LOADING redis is loading")
	c.Set(ctx, "other", "v", time.Minute)
	if c.Available() {
		t.Fatal("breaker should be open")
	}
	if c.Delete(ctx, "token:abc") {
		t.Error("Delete() against a failing redis = true, want false")
	}

	mr.SetError("")
	if !c.Delete(ctx, "token:abc") {
		t.Fatal("Delete() with open breaker = false, want true")
	}
	if mr.Exists("token:abc") {
		t.Error("key should be removed even while the breaker is open")
	}
}

// =============================================================================
// Noop
// =============================================================================

func TestNoopCache(t *testing.T) {
	c := NewNoopCache()
	ctx := context.Background()

	c.Set(ctx, "k", "v", time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("noop cache should never hit")
	}
	if !c.Delete(ctx, "k") {
		t.Error("noop Delete() should report the key gone")
	}
	if c.Available() {
		t.Error("noop cache should report unavailable")
	}
}
