package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return Default()
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"profile", func(c *Config) { c.Viewer.DefaultProfile = "molstar" }, "viewer.default_profile"},
		{"format", func(c *Config) { c.Viewer.DefaultFormat = "sdf" }, "viewer.default_format"},
		{"download bytes", func(c *Config) { c.Viewer.MaxDownloadBytes = -1 }, "viewer.max_download_bytes"},
		{"redis addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis.addr"},
		{"redis db", func(c *Config) { c.Redis.Enabled = true; c.Redis.DB = -1 }, "redis.db"},
		{"minio endpoint", func(c *Config) { c.MinIO.Enabled = true; c.MinIO.Endpoint = "" }, "minio.endpoint"},
		{"kafka brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"kafka topic", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Topic = "" }, "kafka.topic"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "text" }, "log.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.want)
			}
		})
	}
}

func TestValidate_DisabledIntegrationsAreNotChecked(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Addr = ""
	cfg.Kafka.Brokers = nil
	cfg.MinIO.Endpoint = ""
	assert.NoError(t, cfg.Validate())
}

//Personal.AI order the ending
