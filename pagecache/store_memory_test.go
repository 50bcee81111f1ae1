package pagecache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	store := newMemoryStore(0, 0)
	ctx := context.Background()

	body := []byte("<p>hello</p>")
	if err := store.Set(ctx, "Main Page", body, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	body[0] = 'x'

	got, ok, err := store.Get(ctx, "Main Page")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected value in cache")
	}
	if string(got) != "<p>hello</p>" {
		t.Fatalf("expected cached clone to be unchanged, got %q", got)
	}

	if err := store.Delete(ctx, "Main Page"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, err := store.Get(ctx, "Main Page"); err != nil || ok {
		t.Fatalf("expected deleted key to be missing, ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreEmptyValueIsAHit(t *testing.T) {
	store := newMemoryStore(0, 0)
	ctx := context.Background()

	if err := store.Set(ctx, "Missing", nil, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, ok, err := store.Get(ctx, "Missing")
	if err != nil || !ok {
		t.Fatalf("expected empty value to be cached, ok=%v err=%v", ok, err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty value, got %q", got)
	}
}

func TestMemoryStoreHonorsExplicitTTL(t *testing.T) {
	store := newMemoryStore(0, 0)
	if err := store.Set(context.Background(), "ttl-key", []byte("value"), 50*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(80 * time.Millisecond)
	if _, ok, err := store.Get(context.Background(), "ttl-key"); err != nil || ok {
		t.Fatalf("expected ttl-key to expire, ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreFlush(t *testing.T) {
	store := newMemoryStore(time.Minute, time.Minute)
	ctx := context.Background()
	for _, key := range []string{"a", "b"} {
		if err := store.Set(ctx, key, []byte(key), 0); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	for _, key := range []string{"a", "b"} {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Fatalf("expected %s to be flushed", key)
		}
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("unexpected driver %q", store.Driver())
	}
}

func TestMemoryStoreIgnoresForeignValues(t *testing.T) {
	store := newMemoryStore(0, 0).(*memoryStore)
	store.cache.Set("foreign", 42, time.Minute)
	if _, ok, err := store.Get(context.Background(), "foreign"); err != nil || ok {
		t.Fatalf("expected non-byte value to read as a miss, ok=%v err=%v", ok, err)
	}
}
