// Package config provides configuration loading, defaults, and validation for
// chargeview.
package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "CHARGEVIEW"

// newViper builds a Viper instance with YAML file type, the CHARGEVIEW_ env
// prefix, automatic env binding and a "." → "_" key replacer so that
// "redis.addr" resolves to CHARGEVIEW_REDIS_ADDR.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v)
	return v
}

// bindEnvKeys registers every key so that Unmarshal sees env-only values;
// AutomaticEnv alone only affects explicit Get calls.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.host", "server.port", "server.read_timeout", "server.write_timeout",
		"server.max_body_size", "server.shutdown_timeout",
		"viewer.default_profile", "viewer.default_format", "viewer.download_timeout",
		"viewer.max_download_bytes", "viewer.allow_local_files",
		"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.pool_size",
		"redis.default_ttl", "redis.key_prefix",
		"minio.enabled", "minio.endpoint", "minio.access_key", "minio.secret_key",
		"minio.region", "minio.use_ssl",
		"kafka.enabled", "kafka.brokers", "kafka.topic", "kafka.client_id",
		"metrics.enabled", "metrics.namespace", "metrics.path",
		"log.level", "log.format",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// Load reads the YAML file at configPath, merges CHARGEVIEW_* environment
// overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from CHARGEVIEW_* environment variables only.
//
//	CHARGEVIEW_<SECTION>_<FIELD>   e.g.  CHARGEVIEW_SERVER_PORT, CHARGEVIEW_KAFKA_ENABLED
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the re-parsed Config
// whenever the file changes.  Only hot-reloadable settings (log level) should
// be applied by the callback.  Invalid configs are reported through onError
// (which may be nil) and do not reach onChange.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on error.  For main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
