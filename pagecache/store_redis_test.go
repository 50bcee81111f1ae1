package pagecache

import (
	"context"
	"errors"
	"path"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubRedisClient struct {
	hashes    map[string]map[string]string
	ttl       map[string]time.Time
	getErr    error
	setErr    error
	expireErr error
	delErr    error
	scanErr   error
}

func newStubRedisClient() *stubRedisClient {
	return &stubRedisClient{
		hashes: make(map[string]map[string]string),
		ttl:    make(map[string]time.Time),
	}
}

func (c *stubRedisClient) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	if c.getErr != nil {
		return redis.NewMapStringStringResult(nil, c.getErr)
	}
	out := make(map[string]string)
	for field, value := range c.hashes[key] {
		out[field] = value
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (c *stubRedisClient) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if c.setErr != nil {
		return redis.NewIntResult(0, c.setErr)
	}
	hash := c.hashes[key]
	if hash == nil {
		hash = make(map[string]string)
		c.hashes[key] = hash
	}
	for i := 0; i+1 < len(values); i += 2 {
		field, _ := values[i].(string)
		switch v := values[i+1].(type) {
		case []byte:
			hash[field] = string(v)
		case string:
			hash[field] = v
		}
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (c *stubRedisClient) PExpire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	if c.expireErr != nil {
		return redis.NewBoolResult(false, c.expireErr)
	}
	if _, ok := c.hashes[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	c.ttl[key] = time.Now().Add(expiration)
	return redis.NewBoolResult(true, nil)
}

func (c *stubRedisClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if c.delErr != nil {
		return redis.NewIntResult(0, c.delErr)
	}
	var n int64
	for _, key := range keys {
		if _, ok := c.hashes[key]; ok {
			n++
		}
		delete(c.hashes, key)
		delete(c.ttl, key)
	}
	return redis.NewIntResult(n, nil)
}

// Scan returns every match in a single page.
func (c *stubRedisClient) Scan(_ context.Context, _ uint64, match string, _ int64) *redis.ScanCmd {
	if c.scanErr != nil {
		return redis.NewScanCmdResult(nil, 0, c.scanErr)
	}
	var keys []string
	for key := range c.hashes {
		if ok, _ := path.Match(match, key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return redis.NewScanCmdResult(keys, 0, nil)
}

func TestRedisStoreNilClientErrors(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(nil, 0, "")
	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, errRedisUnavailable) {
		t.Fatalf("expected get error when redis client is nil")
	}
	if err := store.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, errRedisUnavailable) {
		t.Fatalf("expected set error when redis client is nil")
	}
	if err := store.Delete(ctx, "k"); !errors.Is(err, errRedisUnavailable) {
		t.Fatalf("expected delete error when redis client is nil")
	}
	if err := store.Flush(ctx); !errors.Is(err, errRedisUnavailable) {
		t.Fatalf("expected flush error when redis client is nil")
	}
}

func TestRedisStoreOperationsWithStubClient(t *testing.T) {
	ctx := context.Background()
	client := newStubRedisClient()
	store := newRedisStore(client, 0, "wiki")
	stored := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.(*redisStore).now = func() time.Time { return stored }

	if err := store.Set(ctx, "Oracle Kai", []byte("cached page content"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	record, ok := client.hashes["wiki:page:Oracle Kai"]
	if !ok {
		t.Fatalf("expected page record under the prefix, got %v", client.hashes)
	}
	if record["content"] != "cached page content" || record["stored_at"] != strconv.FormatInt(stored.UnixMilli(), 10) {
		t.Fatalf("unexpected page record %v", record)
	}
	if ttl := client.ttl["wiki:page:Oracle Kai"]; ttl.Before(time.Now().Add(defaultCacheTTL - time.Second)) {
		t.Fatalf("expected default ttl to be applied, got %v", ttl)
	}
	body, ok, err := store.Get(ctx, "Oracle Kai")
	if err != nil || !ok || string(body) != "cached page content" {
		t.Fatalf("unexpected get result: ok=%v err=%v body=%s", ok, err, string(body))
	}

	if err := store.Set(ctx, "Missing", nil, time.Minute); err != nil {
		t.Fatalf("set empty failed: %v", err)
	}
	if body, ok, err := store.Get(ctx, "Missing"); err != nil || !ok || len(body) != 0 {
		t.Fatalf("expected empty page hit, ok=%v err=%v body=%q", ok, err, body)
	}

	if err := store.Delete(ctx, "Oracle Kai"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, err := store.Get(ctx, "Oracle Kai"); err != nil || ok {
		t.Fatalf("expected deleted key missing, ok=%v err=%v", ok, err)
	}
	if store.Driver() != DriverRedis {
		t.Fatalf("unexpected driver %q", store.Driver())
	}
}

func TestRedisStoreIgnoresRecordsWithoutContent(t *testing.T) {
	client := newStubRedisClient()
	client.hashes["wiki:page:Half"] = map[string]string{"stored_at": "1"}
	if _, ok, err := newRedisStore(client, 0, "wiki").Get(context.Background(), "Half"); err != nil || ok {
		t.Fatalf("expected miss for a record without content, ok=%v err=%v", ok, err)
	}
}

func TestRedisStoreFlushScopedToDerivedPrefix(t *testing.T) {
	ctx := context.Background()
	client := newStubRedisClient()
	prefix := PagePrefix("https://wiki.example.org/w/api.php", "Web:Spende[2013]*/", "render")
	store := newRedisStore(client, 0, prefix)

	client.hashes["other:page:keep"] = map[string]string{"content": "1"}
	client.hashes["wiki.example.org|Web:Spende2/|render:page:keep"] = map[string]string{"content": "1"}
	if err := store.Set(ctx, "flushme", []byte("x"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if _, ok, err := store.Get(ctx, "flushme"); err != nil || ok {
		t.Fatalf("expected flushed key to be gone")
	}
	if len(client.hashes) != 2 {
		t.Fatalf("expected keys outside the prefix to survive flush, got %v", client.hashes)
	}
}

func TestRedisStoreErrorPropagation(t *testing.T) {
	ctx := context.Background()

	client := newStubRedisClient()
	client.getErr = errors.New("get")
	if _, _, err := newRedisStore(client, 0, "pfx").Get(ctx, "k"); err == nil {
		t.Fatalf("expected get error")
	}

	client = newStubRedisClient()
	client.setErr = errors.New("set")
	if err := newRedisStore(client, 0, "pfx").Set(ctx, "k", []byte("v"), 0); err == nil {
		t.Fatalf("expected set error")
	}

	client = newStubRedisClient()
	client.expireErr = errors.New("expire")
	if err := newRedisStore(client, 0, "pfx").Set(ctx, "k", []byte("v"), 0); err == nil {
		t.Fatalf("expected expire error")
	}
	if _, ok := client.hashes["pfx:page:k"]; ok {
		t.Fatalf("expected record without expiry to be removed")
	}

	client = newStubRedisClient()
	client.scanErr = errors.New("scan")
	if err := newRedisStore(client, 0, "pfx").Flush(ctx); err == nil {
		t.Fatalf("expected flush scan error")
	}

	client = newStubRedisClient()
	client.delErr = errors.New("del")
	client.hashes["pfx:page:a"] = map[string]string{"content": "1"}
	if err := newRedisStore(client, 0, "pfx").Flush(ctx); err == nil {
		t.Fatalf("expected flush delete error")
	}
}
