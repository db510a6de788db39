// Package config loads cache settings from YAML and CACHEASIDE_* environment
// variables and turns them into a provider and cacheaside.Options.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full set of settings. Only the section named by Driver is used.
type Config struct {
	Driver       string        `mapstructure:"driver"`
	Namespace    string        `mapstructure:"namespace"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	Codec        string        `mapstructure:"codec"`
	SingleFlight bool          `mapstructure:"single_flight"`
	CacheZero    bool          `mapstructure:"cache_zero"`
	Disabled     bool          `mapstructure:"disabled"`

	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Memcache  MemcacheConfig  `mapstructure:"memcache"`
	Ristretto RistrettoConfig `mapstructure:"ristretto"`
	BigCache  BigCacheConfig  `mapstructure:"bigcache"`
	GCache    GCacheConfig    `mapstructure:"gcache"`
	LRU       LRUConfig       `mapstructure:"lru"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Filter string `mapstructure:"filter"` // zapfilter rules, "" = none
}

// RedisConfig serves both the "redis" and "rediscache" drivers.
type RedisConfig struct {
	URL       string        `mapstructure:"url"`
	LocalSize int           `mapstructure:"local_size"` // rediscache only
	LocalTTL  time.Duration `mapstructure:"local_ttl"`  // rediscache only
}

type MemcacheConfig struct {
	Servers []string      `mapstructure:"servers"`
	Timeout time.Duration `mapstructure:"timeout"`
	MaxIdle int           `mapstructure:"max_idle"`
}

type RistrettoConfig struct {
	NumCounters int64 `mapstructure:"num_counters"`
	MaxCost     int64 `mapstructure:"max_cost"`
	BufferItems int64 `mapstructure:"buffer_items"`
	Metrics     bool  `mapstructure:"metrics"`
}

type BigCacheConfig struct {
	LifeWindow         time.Duration `mapstructure:"life_window"`
	HardMaxCacheSizeMB int           `mapstructure:"hard_max_cache_size_mb"`
}

type GCacheConfig struct {
	Size   int    `mapstructure:"size"`
	Policy string `mapstructure:"policy"`
}

type LRUConfig struct {
	Size int `mapstructure:"size"`
}

const envPrefix = "CACHEASIDE"

// Load reads configPath (optional) on top of defaults, then applies
// CACHEASIDE_* environment overrides, e.g. CACHEASIDE_REDIS_URL.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("driver", DriverLRU)
	v.SetDefault("namespace", "")
	v.SetDefault("default_ttl", time.Duration(0))
	v.SetDefault("codec", "json")
	v.SetDefault("single_flight", false)
	v.SetDefault("cache_zero", false)
	v.SetDefault("disabled", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.filter", "")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.local_size", 0)
	v.SetDefault("redis.local_ttl", time.Minute)

	v.SetDefault("memcache.servers", []string{"localhost:11211"})
	v.SetDefault("memcache.timeout", time.Duration(0))
	v.SetDefault("memcache.max_idle", 0)

	v.SetDefault("ristretto.num_counters", int64(1e7))
	v.SetDefault("ristretto.max_cost", 1<<30)
	v.SetDefault("ristretto.buffer_items", 64)
	v.SetDefault("ristretto.metrics", false)

	v.SetDefault("bigcache.life_window", 10*time.Minute)
	v.SetDefault("bigcache.hard_max_cache_size_mb", 0)

	v.SetDefault("gcache.size", 10000)
	v.SetDefault("gcache.policy", "lru")

	v.SetDefault("lru.size", 10000)
}

func validate(cfg *Config) error {
	if cfg.DefaultTTL < 0 {
		return fmt.Errorf("default_ttl must be non-negative")
	}
	switch cfg.Codec {
	case "json", "msgpack", "cbor":
	default:
		return fmt.Errorf("codec must be one of json, msgpack, cbor; got %q", cfg.Codec)
	}

	switch cfg.Driver {
	case DriverRedis, DriverRedisCache:
		if cfg.Redis.URL == "" {
			return fmt.Errorf("redis.url is required")
		}
		if cfg.Redis.LocalSize < 0 {
			return fmt.Errorf("redis.local_size must be non-negative")
		}
	case DriverMemcache:
		if len(cfg.Memcache.Servers) == 0 {
			return fmt.Errorf("memcache.servers is required")
		}
	case DriverRistretto:
		if cfg.Ristretto.NumCounters < 1 || cfg.Ristretto.MaxCost < 1 {
			return fmt.Errorf("ristretto.num_counters and ristretto.max_cost must be at least 1")
		}
	case DriverBigCache:
		if cfg.BigCache.LifeWindow <= 0 {
			return fmt.Errorf("bigcache.life_window must be positive")
		}
	case DriverGCache:
		if cfg.GCache.Size < 1 {
			return fmt.Errorf("gcache.size must be at least 1")
		}
	case DriverLRU:
		if cfg.LRU.Size < 1 {
			return fmt.Errorf("lru.size must be at least 1")
		}
	default:
		return fmt.Errorf("unknown driver %q", cfg.Driver)
	}
	return nil
}
