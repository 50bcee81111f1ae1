// Package bootstrap turns a config.Config into ready-to-use components.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/goforj/pageretriever"
	"github.com/goforj/pageretriever/filefetcher"
	"github.com/goforj/pageretriever/internal/config"
	"github.com/goforj/pageretriever/mwapi"
	"github.com/goforj/pageretriever/pagecache"
)

// App holds the wired retriever and the resources it owns.
type App struct {
	Retriever pageretriever.PageRetriever
	Store     pagecache.Store
	Log       zerolog.Logger

	closers []func() error
}

// Close releases connections opened for the cache backend.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// New builds the logger, the page source and, when enabled, the cache around it.
func New(ctx context.Context, cfg *config.Config, out io.Writer) (*App, error) {
	log, err := NewLogger(cfg.Log, out)
	if err != nil {
		return nil, err
	}
	app := &App{Log: log}

	source, err := NewSource(cfg, log)
	if err != nil {
		return nil, err
	}
	app.Retriever = source

	if !cfg.Cache.Enabled {
		return app, nil
	}
	cacheCfg := cfg.Cache
	cacheCfg.Prefix = CachePrefix(cfg)
	store, closer, err := NewStore(ctx, cacheCfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	app.Store = store
	app.Retriever = pageretriever.NewCachingPageRetriever(source, store,
		pageretriever.WithTTL(cfg.Cache.TTL),
		pageretriever.WithLogger(log),
		pageretriever.WithObserver(pageretriever.LogObserver(log)),
	)
	return app, nil
}

// NewLogger returns a zerolog logger at the configured level. The console
// format is meant for terminals; json is the default.
func NewLogger(cfg config.LogConfig, out io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("%w: log level %q", pageretriever.ErrInvalidConfiguration, cfg.Level)
		}
		level = parsed
	}
	w := out
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// NewSource builds the uncached retriever named by cfg.Source.
func NewSource(cfg *config.Config, log zerolog.Logger) (pageretriever.PageRetriever, error) {
	switch cfg.Source {
	case config.SourceLocal:
		var fetcher filefetcher.Fetcher = filefetcher.NewSimpleFetcher(nil)
		if cfg.Local.Root != "" {
			fetcher = filefetcher.NewDirFetcher(cfg.Local.Root, cfg.Local.Ext)
		}
		return pageretriever.NewLocalFilePageRetriever(fetcher, log), nil
	case config.SourceAPI:
		client, err := NewWikiClient(cfg.Wiki, log)
		if err != nil {
			return nil, err
		}
		mode, err := pageretriever.ParseMode(cfg.Wiki.Mode)
		if err != nil {
			return nil, err
		}
		return pageretriever.NewAPIPageRetriever(pageretriever.APIConfig{
			API:             client,
			User:            mwapi.NewUser(cfg.Wiki.User, cfg.Wiki.Password),
			Logger:          log,
			PageTitlePrefix: cfg.Wiki.PageTitlePrefix,
			Mode:            mode,
			Sanitize:        cfg.Wiki.Sanitize,
		})
	default:
		return nil, fmt.Errorf("%w: unknown source %q", pageretriever.ErrInvalidConfiguration, cfg.Source)
	}
}

// NewWikiClient returns an mwapi client for cfg.
func NewWikiClient(cfg config.WikiConfig, log zerolog.Logger) (*mwapi.Client, error) {
	return mwapi.NewClient(mwapi.Config{
		Endpoint:  cfg.Endpoint,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Logger:    log,
	})
}

// CachePrefix returns the configured cache prefix or, when none is set for
// the api source, one derived from the wiki endpoint, title prefix and mode.
func CachePrefix(cfg *config.Config) string {
	if cfg.Cache.Prefix != "" || cfg.Source != config.SourceAPI {
		return cfg.Cache.Prefix
	}
	mode, err := pageretriever.ParseMode(cfg.Wiki.Mode)
	if err != nil {
		return cfg.Cache.Prefix
	}
	return pagecache.PagePrefix(cfg.Wiki.Endpoint, cfg.Wiki.PageTitlePrefix, mode.String())
}

// NewStore opens the configured cache backend. The returned closer, when
// non-nil, releases the backend connection. The memo is only applied to
// shared backends.
func NewStore(ctx context.Context, cfg config.CacheConfig) (pagecache.Store, func() error, error) {
	driver, err := pagecache.ParseDriver(cfg.Driver)
	if err != nil {
		return nil, nil, fmt.Errorf("open page cache: %w", err)
	}
	opts := []pagecache.StoreOption{
		pagecache.WithDefaultTTL(cfg.TTL),
		pagecache.WithPrefix(cfg.Prefix),
		pagecache.WithCompression(pagecache.CompressionCodec(cfg.Compression)),
		pagecache.WithMaxValueBytes(cfg.MaxValueBytes),
	}
	if cfg.Memoize && driver.Shared() {
		opts = append(opts, pagecache.WithMemo())
	}
	if cfg.EncryptionKey != "" {
		opts = append(opts, pagecache.WithEncryptionKey([]byte(cfg.EncryptionKey)))
	}

	var closer func() error
	switch driver {
	case pagecache.DriverFile:
		if cfg.FileDir != "" {
			opts = append(opts, pagecache.WithFileDir(cfg.FileDir))
		}
	case pagecache.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		closer = client.Close
		opts = append(opts, pagecache.WithRedisClient(client))
	case pagecache.DriverMemcached:
		opts = append(opts, pagecache.WithMemcachedAddresses(cfg.MemcachedAddresses...))
	case pagecache.DriverSQL:
		opts = append(opts, pagecache.WithSQL(cfg.SQLDriver, cfg.SQLDSN, cfg.SQLTable))
	case pagecache.DriverDynamo:
		opts = append(opts,
			pagecache.WithDynamoTable(cfg.DynamoTable),
			pagecache.WithDynamoEndpoint(cfg.DynamoRegion, cfg.DynamoEndpoint))
	case pagecache.DriverNATS:
		kv, nc, err := openNATSBucket(cfg.NATSURL, cfg.NATSBucket)
		if err != nil {
			return nil, nil, err
		}
		closer = func() error {
			nc.Close()
			return nil
		}
		opts = append(opts, pagecache.WithNATSKeyValue(kv, false))
	}

	store := pagecache.NewStoreWith(ctx, driver, opts...)
	if err := pagecache.Err(store); err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, nil, fmt.Errorf("open %s page cache: %w", driver, err)
	}
	return store, closer, nil
}

func openNATSBucket(url, bucket string) (nats.KeyValue, *nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("pageretriever"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: bucket, Description: "rendered wiki pages"})
	}
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("open kv bucket %s: %w", bucket, err)
	}
	return kv, nc, nil
}
