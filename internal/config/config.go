// Package config loads pageretriever settings from a YAML file, PAGERETRIEVER_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goforj/pageretriever"
	"github.com/goforj/pageretriever/pagecache"
)

const (
	EnvPrefix         = "PAGERETRIEVER"
	DefaultConfigName = "pageretriever"

	SourceAPI   = "api"
	SourceLocal = "local"
)

// Config is the full application configuration.
type Config struct {
	Source string      `mapstructure:"source"`
	Log    LogConfig   `mapstructure:"log"`
	Wiki   WikiConfig  `mapstructure:"wiki"`
	Local  LocalConfig `mapstructure:"local"`
	Cache  CacheConfig `mapstructure:"cache"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// WikiConfig configures the MediaWiki API source.
type WikiConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	PageTitlePrefix string        `mapstructure:"page_title_prefix"`
	Mode            string        `mapstructure:"mode"`
	Sanitize        bool          `mapstructure:"sanitize"`
	UserAgent       string        `mapstructure:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// LocalConfig configures the file source. An empty Root reads names as paths
// or URLs.
type LocalConfig struct {
	Root string `mapstructure:"root"`
	Ext  string `mapstructure:"ext"`
}

// CacheConfig selects and configures the page cache store.
type CacheConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Driver        string        `mapstructure:"driver"`
	TTL           time.Duration `mapstructure:"ttl"`
	Prefix        string        `mapstructure:"prefix"`
	Compression   string        `mapstructure:"compression"`
	MaxValueBytes int           `mapstructure:"max_value_bytes"`
	Memoize       bool          `mapstructure:"memoize"`
	EncryptionKey string        `mapstructure:"encryption_key"`

	FileDir string `mapstructure:"file_dir"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	MemcachedAddresses []string `mapstructure:"memcached_addresses"`

	SQLDriver string `mapstructure:"sql_driver"`
	SQLDSN    string `mapstructure:"sql_dsn"`
	SQLTable  string `mapstructure:"sql_table"`

	DynamoTable    string `mapstructure:"dynamo_table"`
	DynamoRegion   string `mapstructure:"dynamo_region"`
	DynamoEndpoint string `mapstructure:"dynamo_endpoint"`

	NATSURL    string `mapstructure:"nats_url"`
	NATSBucket string `mapstructure:"nats_bucket"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"source":    "source",
	"mode":      "wiki.mode",
	"prefix":    "wiki.page_title_prefix",
	"endpoint":  "wiki.endpoint",
	"root":      "local.root",
	"cache":     "cache.driver",
	"log-level": "log.level",
}

// Keys without a meaningful default are still registered so that
// AutomaticEnv can fill them during Unmarshal.
var envOnlyKeys = []string{
	"wiki.endpoint", "wiki.user", "wiki.password", "wiki.page_title_prefix", "wiki.sanitize",
	"local.root",
	"cache.max_value_bytes", "cache.memoize", "cache.encryption_key", "cache.file_dir",
	"cache.redis_addr", "cache.redis_password", "cache.redis_db",
	"cache.sql_dsn", "cache.dynamo_endpoint", "cache.nats_url",
}

func setDefaults(v *viper.Viper) {
	for _, key := range envOnlyKeys {
		_ = v.BindEnv(key)
	}
	v.SetDefault("source", SourceAPI)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("wiki.mode", string(pageretriever.ModeRendered))
	v.SetDefault("wiki.user_agent", "pageretriever/1.0")
	v.SetDefault("wiki.timeout", 30*time.Second)
	v.SetDefault("local.ext", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.driver", string(pagecache.DriverMemory))
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.compression", string(pagecache.CompressionNone))
	v.SetDefault("cache.memcached_addresses", []string{"127.0.0.1:11211"})
	v.SetDefault("cache.sql_driver", "sqlite")
	v.SetDefault("cache.sql_table", "page_cache")
	v.SetDefault("cache.dynamo_table", "page_cache")
	v.SetDefault("cache.dynamo_region", "us-east-1")
	v.SetDefault("cache.nats_bucket", "pages")
}

// Load reads configuration. With an explicit path the file must exist;
// otherwise pageretriever.yaml is looked up in the working directory and
// /etc/pageretriever and may be absent. Flags that were set win over the
// environment, which wins over the file.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/pageretriever")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceAPI:
		if c.Wiki.Endpoint == "" {
			return fmt.Errorf("%w: wiki.endpoint is required for the api source", pageretriever.ErrInvalidConfiguration)
		}
		if _, err := pageretriever.ParseMode(c.Wiki.Mode); err != nil {
			return err
		}
	case SourceLocal:
	default:
		return fmt.Errorf("%w: unknown source %q", pageretriever.ErrInvalidConfiguration, c.Source)
	}

	if !c.Cache.Enabled {
		return nil
	}
	driver, err := pagecache.ParseDriver(c.Cache.Driver)
	if err != nil {
		return fmt.Errorf("%w: %w", pageretriever.ErrInvalidConfiguration, err)
	}
	switch driver {
	case pagecache.DriverRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("%w: cache.redis_addr is required for the redis driver", pageretriever.ErrInvalidConfiguration)
		}
	case pagecache.DriverNATS:
		if c.Cache.NATSURL == "" {
			return fmt.Errorf("%w: cache.nats_url is required for the nats driver", pageretriever.ErrInvalidConfiguration)
		}
	}
	switch pagecache.CompressionCodec(c.Cache.Compression) {
	case pagecache.CompressionNone, pagecache.CompressionGzip, "":
	default:
		return fmt.Errorf("%w: unknown compression %q", pageretriever.ErrInvalidConfiguration, c.Cache.Compression)
	}
	if n := len(c.Cache.EncryptionKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("%w: cache.encryption_key must be 16, 24 or 32 bytes", pageretriever.ErrInvalidConfiguration)
	}
	return nil
}
