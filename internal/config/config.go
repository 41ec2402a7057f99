// Package config defines the configuration structures for chargeview.  No I/O
// or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ViewerConfig holds the defaults used when a load request omits them and the
// limits applied to structure downloads.
type ViewerConfig struct {
	DefaultProfile   string        `mapstructure:"default_profile"` // "ACC2" | "AlphaCharges"
	DefaultFormat    string        `mapstructure:"default_format"`  // "mmcif" | "pdb"
	DownloadTimeout  time.Duration `mapstructure:"download_timeout"`
	MaxDownloadBytes int64         `mapstructure:"max_download_bytes"`
	// AllowLocalFiles permits bare paths and file:// URLs.  The API server
	// normally disables it; the CLI enables it.
	AllowLocalFiles bool `mapstructure:"allow_local_files"`
}

// RedisConfig holds the download cache connection parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds S3-compatible object-storage parameters used for s3:// URLs.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// KafkaConfig holds the state-event producer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	ClientID     string        `mapstructure:"client_id"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// Logging converts to the logger's own configuration type.
func (l LogConfig) Logging() logging.LogConfig {
	return logging.LogConfig{Level: l.Level, Format: l.Format, OutputPaths: l.OutputPaths}
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	Redis   RedisConfig   `mapstructure:"redis"`
	MinIO   MinIOConfig   `mapstructure:"minio"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first error encountered.  Optional integrations are only
// checked when enabled.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	switch c.Viewer.DefaultProfile {
	case "ACC2", "AlphaCharges":
	default:
		return fmt.Errorf("config: viewer.default_profile %q is invalid; expected ACC2|AlphaCharges", c.Viewer.DefaultProfile)
	}
	switch c.Viewer.DefaultFormat {
	case "mmcif", "pdb":
	default:
		return fmt.Errorf("config: viewer.default_format %q is invalid; expected mmcif|pdb", c.Viewer.DefaultFormat)
	}
	if c.Viewer.MaxDownloadBytes < 0 {
		return fmt.Errorf("config: viewer.max_download_bytes must be ≥ 0, got %d", c.Viewer.MaxDownloadBytes)
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	if c.MinIO.Enabled && c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required when minio is enabled")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
