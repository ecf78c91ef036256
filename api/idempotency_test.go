package api

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestDeduper(t *testing.T) (*RedisDeduper, *miniredis.Miniredis) {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return NewRedisDeduper(client, time.Minute), m
}

func TestRedisDeduperAddRemove(t *testing.T) {
	deduper, m := newTestDeduper(t)
	ctx := context.Background()

	added, err := deduper.Add(ctx, categoriesScope, "k1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added {
		t.Fatalf("expected key to be added")
	}
	if ttl := m.TTL("idempotency:categories:k1"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}

	again, err := deduper.Add(ctx, categoriesScope, "k1")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if again {
		t.Fatalf("expected duplicate key to be rejected")
	}

	if err := deduper.Remove(ctx, categoriesScope, "k1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	readded, err := deduper.Add(ctx, categoriesScope, "k1")
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if !readded {
		t.Fatalf("expected key to be accepted after removal")
	}
}

func TestRedisDeduperScopesKeys(t *testing.T) {
	deduper, _ := newTestDeduper(t)
	ctx := context.Background()

	if added, err := deduper.Add(ctx, "categories", "k"); err != nil || !added {
		t.Fatalf("add categories scope: %v %v", added, err)
	}
	if added, err := deduper.Add(ctx, "other", "k"); err != nil || !added {
		t.Fatalf("same key in another scope should be accepted: %v %v", added, err)
	}
}

func TestRedisDeduperExpiry(t *testing.T) {
	deduper, m := newTestDeduper(t)
	ctx := context.Background()

	if _, err := deduper.Add(ctx, categoriesScope, "k"); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.FastForward(2 * time.Minute)
	added, err := deduper.Add(ctx, categoriesScope, "k")
	if err != nil {
		t.Fatalf("add after expiry: %v", err)
	}
	if !added {
		t.Fatalf("expected key to be accepted after TTL elapsed")
	}
}
