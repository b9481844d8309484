// Package config provides centralized configuration management for
// querygate: built-in defaults, an optional YAML config file, and
// QUERYGATE_* environment overrides.
package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// QUERYGATE_SERVER_PORT maps to server.port.
const EnvPrefix = "QUERYGATE"

var (
	appConfig *Config
	configMu  sync.RWMutex

	// configFile is an explicit config file path set from the --config flag.
	configFile string
)

// SetConfigFile pins the loader to an explicit config file. Must be called
// before the first Load.
func SetConfigFile(path string) {
	configMu.Lock()
	defer configMu.Unlock()
	configFile = strings.TrimSpace(path)
	appConfig = nil
}

// Load reads configuration, caching the result for subsequent calls.
func Load(ctx context.Context) (*Config, error) {
	configMu.RLock()
	if appConfig != nil {
		cached := appConfig
		configMu.RUnlock()
		return cached, nil
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()
	if appConfig != nil {
		return appConfig, nil
	}

	cfg, err := load()
	if err != nil {
		return nil, err
	}
	appConfig = cfg
	return cfg, nil
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = nil
	configFile = ""
}

func load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/querygate")
		if err := v.ReadInConfig(); err != nil {
			// Defaults plus env vars are a complete configuration; only a
			// malformed file is fatal.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:           cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("build config decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", "querygate.db")

	v.SetDefault("limiter.max_requests", 2)
	v.SetDefault("limiter.window", 15*time.Second)

	v.SetDefault("suggest.debounce", 300*time.Millisecond)
	v.SetDefault("suggest.min_query_length", 2)
	v.SetDefault("suggest.limit", 10)

	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("logging.level", "info")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}

func validate(cfg *Config) error {
	if cfg.Limiter.MaxRequests < 1 {
		return fmt.Errorf("limiter.max_requests must be positive, got %d", cfg.Limiter.MaxRequests)
	}
	if cfg.Limiter.Window <= 0 {
		return fmt.Errorf("limiter.window must be positive, got %s", cfg.Limiter.Window)
	}
	if cfg.Suggest.Debounce < 0 {
		return fmt.Errorf("suggest.debounce must not be negative, got %s", cfg.Suggest.Debounce)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	return nil
}
