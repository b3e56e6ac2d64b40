package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "account:summary:acc-1", `{"principal_balance":100}`, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "account:summary:acc-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if val != `{"principal_balance":100}` {
		t.Fatalf("unexpected value: %s", val)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "account:summary:acc-1", "stale", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "account:summary:acc-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "account:summary:acc-1"); err == nil {
		t.Fatal("expected error getting deleted key")
	}
}

func TestCacheMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)

	if _, err := cache.Get(context.Background(), "missing"); err == nil {
		t.Fatal("expected error on cache miss")
	}
}
