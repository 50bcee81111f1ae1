package pagecache

import "context"

// NewStore returns a store for the requested driver, wrapped with the
// configured encryption, page body codec and memo.
//
// Drivers that cannot be initialised (unreachable database, missing client)
// yield a store that reports the construction error on every call; use Err to
// inspect it up front.
func NewStore(ctx context.Context, cfg StoreConfig) Store {
	cfg = cfg.withDefaults()
	store, err := newDriverStore(ctx, cfg)
	if err == nil {
		store, err = newEncryptingStore(store, cfg.EncryptionKey)
	}
	if err != nil {
		return &inertStore{driver: cfg.Driver, err: err}
	}
	store = newPageBodyStore(store, cfg.Compression, cfg.MaxValueBytes)
	if cfg.Memoize {
		store = NewMemoStore(store, cfg.DefaultTTL)
	}
	return store
}

func newDriverStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Driver {
	case DriverNull:
		return newNullStore(), nil
	case DriverFile:
		return newFileStore(cfg.FileDir, cfg.DefaultTTL)
	case DriverRedis:
		return newRedisStore(cfg.RedisClient, cfg.DefaultTTL, cfg.Prefix), nil
	case DriverMemcached:
		return newMemcachedStore(cfg.MemcachedClient, cfg.MemcachedAddresses, cfg.DefaultTTL, cfg.Prefix), nil
	case DriverSQL:
		return newSQLStore(ctx, cfg)
	case DriverDynamo:
		return newDynamoStore(ctx, cfg)
	case DriverNATS:
		return newNATSStore(cfg.NATSKeyValue, cfg.DefaultTTL, cfg.Prefix, cfg.NATSBucketTTL), nil
	case DriverMemory:
		return newMemoryStore(cfg.DefaultTTL, cfg.MemoryCleanupInterval), nil
	default:
		return nil, &UnknownDriverError{Driver: cfg.Driver}
	}
}

// UnknownDriverError is reported by stores built for an unrecognised driver name.
type UnknownDriverError struct {
	Driver Driver
}

func (e *UnknownDriverError) Error() string {
	return "pagecache: unknown driver " + string(e.Driver)
}

// NewStoreWith builds a store using a driver and a set of functional options.
func NewStoreWith(ctx context.Context, driver Driver, opts ...StoreOption) Store {
	cfg := StoreConfig{Driver: driver}
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	return NewStore(ctx, cfg)
}

// NewMemoryStore is a convenience for an in-process store.
func NewMemoryStore(ctx context.Context, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverMemory, opts...)
}

// NewNullStore returns a store that never caches.
func NewNullStore(ctx context.Context, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverNull, opts...)
}

// NewFileStore is a convenience for a filesystem-backed store.
func NewFileStore(ctx context.Context, dir string, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverFile, append([]StoreOption{WithFileDir(dir)}, opts...)...)
}

// NewRedisStore is a convenience for a redis-backed store. The client is required.
func NewRedisStore(ctx context.Context, client RedisClient, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverRedis, append([]StoreOption{WithRedisClient(client)}, opts...)...)
}

// NewMemcachedStore is a convenience for a memcached-backed store.
func NewMemcachedStore(ctx context.Context, addrs []string, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverMemcached, append([]StoreOption{WithMemcachedAddresses(addrs...)}, opts...)...)
}

// NewSQLStore is a convenience for a database/sql-backed store ("mysql", "pgx" or "sqlite").
func NewSQLStore(ctx context.Context, driverName, dsn, table string, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverSQL, append([]StoreOption{WithSQL(driverName, dsn, table)}, opts...)...)
}

// NewDynamoStore is a convenience for a DynamoDB-backed store. A nil client is
// built from the region and endpoint options.
func NewDynamoStore(ctx context.Context, client DynamoAPI, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverDynamo, append([]StoreOption{WithDynamoClient(client)}, opts...)...)
}

// NewNATSStore is a convenience for a JetStream key-value store.
func NewNATSStore(ctx context.Context, kv NATSKeyValue, opts ...StoreOption) Store {
	return NewStoreWith(ctx, DriverNATS, append([]StoreOption{WithNATSKeyValue(kv, false)}, opts...)...)
}
