package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodySize     = 1 << 20

	DefaultViewerProfile    = "ACC2"
	DefaultViewerFormat     = "mmcif"
	DefaultDownloadTimeout  = 60 * time.Second
	DefaultMaxDownloadBytes = 256 << 20

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 30 * time.Minute
	DefaultRedisKeyPrefix = "chargeview:"

	DefaultMinIOEndpoint = "localhost:9000"

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "chargeview.controls.state"

	DefaultMetricsNamespace = "chargeview"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with its default.  Values
// already set by the caller are left unchanged.  It runs after unmarshalling
// and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}

	// ── Viewer ────────────────────────────────────────────────────────────────
	if cfg.Viewer.DefaultProfile == "" {
		cfg.Viewer.DefaultProfile = DefaultViewerProfile
	}
	if cfg.Viewer.DefaultFormat == "" {
		cfg.Viewer.DefaultFormat = DefaultViewerFormat
	}
	if cfg.Viewer.DownloadTimeout == 0 {
		cfg.Viewer.DownloadTimeout = DefaultDownloadTimeout
	}
	if cfg.Viewer.MaxDownloadBytes == 0 {
		cfg.Viewer.MaxDownloadBytes = DefaultMaxDownloadBytes
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.ClientID == "" {
		cfg.Kafka.ClientID = "chargeview"
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// Default returns a Config populated only with defaults.  The CLI uses it
// when no config file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
