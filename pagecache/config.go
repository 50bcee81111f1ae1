package pagecache

import (
	"os"
	"path/filepath"
	"time"
)

const (
	defaultCachePrefix           = "pages"
	defaultCacheTTL              = time.Hour
	defaultMemoryCleanupInterval = 10 * time.Minute
	defaultSQLTable              = "page_cache"
	defaultDynamoTable           = "page_cache"
	defaultDynamoRegion          = "us-east-1"
)

func defaultFileDir() string {
	return filepath.Join(os.TempDir(), "page-cache")
}

// StoreConfig controls how a Store is constructed.
type StoreConfig struct {
	Driver Driver

	// DefaultTTL is used when a call provides ttl <= 0.
	DefaultTTL time.Duration

	// MemoryCleanupInterval controls in-process cache eviction.
	MemoryCleanupInterval time.Duration

	// Prefix is used by shared backends (e.g. redis keys).
	Prefix string

	// Compression applies to every value written through the store.
	Compression CompressionCodec

	// MaxValueBytes rejects values larger than this after compression (0 = no limit).
	MaxValueBytes int

	// EncryptionKey enables AES-GCM sealing of values (16, 24 or 32 bytes).
	EncryptionKey []byte

	// Memoize adds a per-process read memo in front of the driver.
	Memoize bool

	// RedisClient is required when DriverRedis is used.
	RedisClient RedisClient

	// FileDir controls where file driver stores cache entries.
	FileDir string

	// MemcachedAddresses lists memcached servers (host:port).
	MemcachedAddresses []string
	// MemcachedClient overrides the client built from MemcachedAddresses.
	MemcachedClient MemcachedClient

	// SQLDriverName is one of "mysql", "pgx", "postgres" or "sqlite".
	SQLDriverName string
	SQLDSN        string
	SQLTable      string

	DynamoClient   DynamoAPI
	DynamoTable    string
	DynamoRegion   string
	DynamoEndpoint string

	// NATSKeyValue is required when DriverNATS is used.
	NATSKeyValue NATSKeyValue
	// NATSBucketTTL relies on the bucket's max age; page records then carry no expiry.
	NATSBucketTTL bool
}

func (c StoreConfig) withDefaults() StoreConfig {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = defaultCacheTTL
	}
	if c.MemoryCleanupInterval <= 0 {
		c.MemoryCleanupInterval = defaultMemoryCleanupInterval
	}
	if c.Prefix == "" {
		c.Prefix = defaultCachePrefix
	}
	if c.Compression == "" {
		c.Compression = CompressionNone
	}
	if c.FileDir == "" {
		c.FileDir = defaultFileDir()
	}
	if len(c.MemcachedAddresses) == 0 {
		c.MemcachedAddresses = []string{"127.0.0.1:11211"}
	}
	if c.SQLTable == "" {
		c.SQLTable = defaultSQLTable
	}
	if c.DynamoTable == "" {
		c.DynamoTable = defaultDynamoTable
	}
	if c.DynamoRegion == "" {
		c.DynamoRegion = defaultDynamoRegion
	}
	return c
}
