package pagecache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var errRedisUnavailable = errors.New("pagecache: redis client unavailable")

const (
	redisScanBatch     = 200
	redisFieldContent  = "content"
	redisFieldStoredAt = "stored_at"
)

// RedisClient captures the subset of redis.Client used by the store.
type RedisClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// redisStore keeps each page in a hash at <prefix>:page:<name> holding the
// page content and the unix millisecond time it was stored, so
// `HGET <key> stored_at` tells an operator how old a cached page is. Expiry is
// set on the whole hash.
type redisStore struct {
	client     RedisClient
	defaultTTL time.Duration
	prefix     string
	now        func() time.Time
}

func newRedisStore(client RedisClient, defaultTTL time.Duration, prefix string) Store {
	if defaultTTL <= 0 {
		defaultTTL = defaultCacheTTL
	}
	if prefix == "" {
		prefix = defaultCachePrefix
	}
	return &redisStore{client: client, defaultTTL: defaultTTL, prefix: prefix, now: time.Now}
}

func (s *redisStore) Driver() Driver {
	return DriverRedis
}

// Get treats a hash without a content field as absent.
func (s *redisStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, errRedisUnavailable
	}
	record, err := s.client.HGetAll(ctx, s.pageKey(name)).Result()
	if err != nil {
		return nil, false, err
	}
	content, ok := record[redisFieldContent]
	if !ok {
		return nil, false, nil
	}
	return []byte(content), true, nil
}

// Set writes the record and then its expiry. When the expiry cannot be set the
// record is removed rather than left to live forever.
func (s *redisStore) Set(ctx context.Context, name string, content []byte, ttl time.Duration) error {
	if s.client == nil {
		return errRedisUnavailable
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	key := s.pageKey(name)
	storedAt := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.client.HSet(ctx, key, redisFieldContent, content, redisFieldStoredAt, storedAt).Err(); err != nil {
		return err
	}
	if err := s.client.PExpire(ctx, key, ttl).Err(); err != nil {
		return errors.Join(err, s.client.Del(ctx, key).Err())
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, name string) error {
	if s.client == nil {
		return errRedisUnavailable
	}
	return s.client.Del(ctx, s.pageKey(name)).Err()
}

// Flush deletes the pages under this store's prefix only.
func (s *redisStore) Flush(ctx context.Context) error {
	if s.client == nil {
		return errRedisUnavailable
	}
	match := redisGlobEscaper.Replace(s.prefix) + ":page:*"
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, redisScanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

func (s *redisStore) pageKey(name string) string {
	return s.prefix + ":page:" + name
}

// Derived prefixes carry wiki title text, which may contain glob characters.
var redisGlobEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
