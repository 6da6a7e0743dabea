package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyStore_CheckAndSetExisting(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := client.Set(ctx, store.prefix+"key", "cached", time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if !exists || string(resp) != "cached" {
		t.Fatalf("expected existing cached response, got exists=%v resp=%s", exists, resp)
	}
}

func TestIdempotencyStore_CheckAndSetLocksNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "pending", nil, time.Minute)
	if err != nil || exists || resp != nil {
		t.Fatalf("unexpected result: exists=%v resp=%v err=%v", exists, resp, err)
	}

	exists, resp, err = store.CheckAndSet(ctx, "pending", nil, time.Minute)
	if err != nil || !exists {
		t.Fatalf("expected second claim to see the key, got exists=%v err=%v", exists, err)
	}
	if !IsPending(resp) {
		t.Fatalf("expected pending marker, got %q", resp)
	}
}

func TestIdempotencyStore_CheckAndSetStoresResponse(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "direct", []byte(`{"ok":true}`), time.Minute)
	if err != nil || exists {
		t.Fatalf("unexpected result: exists=%v err=%v", exists, err)
	}

	val, err := client.Get(ctx, store.prefix+"direct").Result()
	if err != nil || val != `{"ok":true}` {
		t.Fatalf("expected stored response, got val=%s err=%v", val, err)
	}

	if ttl := mr.TTL(store.prefix + "direct"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %s", ttl)
	}
}

func TestIdempotencyStore_Update(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "complete", nil, time.Minute); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if err := store.Update(ctx, "complete", []byte("done"), time.Minute); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	val, err := client.Get(ctx, store.prefix+"complete").Result()
	if err != nil || val != "done" {
		t.Fatalf("expected stored response, got val=%s err=%v", val, err)
	}
}

func TestIdempotencyStore_Release(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "failed", nil, time.Minute); err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	if err := store.Release(ctx, "failed"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	exists, _, err := store.CheckAndSet(ctx, "failed", nil, time.Minute)
	if err != nil || exists {
		t.Fatalf("expected released key to be claimable again, got exists=%v err=%v", exists, err)
	}
}
