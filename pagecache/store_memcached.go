package pagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

const (
	memcachedMaxKeyLen = 250
	// memcached reads expirations above 30 days as absolute unix timestamps.
	memcachedRelativeLimit = 30 * 24 * time.Hour
)

// MemcachedClient captures the subset of memcache.Client used by the store.
type MemcachedClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
	FlushAll() error
}

type memcachedStore struct {
	client     MemcachedClient
	defaultTTL time.Duration
	prefix     string
}

func newMemcachedStore(client MemcachedClient, addrs []string, defaultTTL time.Duration, prefix string) Store {
	if client == nil {
		if len(addrs) == 0 {
			addrs = []string{"127.0.0.1:11211"}
		}
		client = memcache.New(addrs...)
	}
	if defaultTTL <= 0 {
		defaultTTL = defaultCacheTTL
	}
	if prefix == "" {
		prefix = defaultCachePrefix
	}
	return &memcachedStore{client: client, defaultTTL: defaultTTL, prefix: prefix}
}

func (s *memcachedStore) Driver() Driver { return DriverMemcached }

func (s *memcachedStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := s.client.Get(s.cacheKey(key))
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return cloneBytes(item.Value), true, nil
}

func (s *memcachedStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	return s.client.Set(&memcache.Item{
		Key:        s.cacheKey(key),
		Value:      value,
		Expiration: memcachedExpiration(ttl, time.Now()),
	})
}

func (s *memcachedStore) Delete(_ context.Context, key string) error {
	err := s.client.Delete(s.cacheKey(key))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}

// Flush invalidates the whole server; memcached has no prefix scan.
func (s *memcachedStore) Flush(_ context.Context) error {
	return s.client.FlushAll()
}

// cacheKey hashes names memcached would reject (spaces, control bytes, length).
func (s *memcachedStore) cacheKey(key string) string {
	full := s.prefix + ":" + key
	if memcachedKeyLegal(full) {
		return full
	}
	sum := sha256.Sum256([]byte(key))
	return s.prefix + ":h:" + hex.EncodeToString(sum[:])
}

func memcachedKeyLegal(key string) bool {
	if len(key) > memcachedMaxKeyLen {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return false
		}
	}
	return true
}

func memcachedExpiration(ttl time.Duration, now time.Time) int32 {
	if ttl > memcachedRelativeLimit {
		return int32(now.Add(ttl).Unix())
	}
	seconds := int32(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
