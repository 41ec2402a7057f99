package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  shutdown_timeout: 5s
viewer:
  default_profile: "AlphaCharges"
  default_format: "mmcif"
  download_timeout: 10s
  allow_local_files: true
redis:
  enabled: true
  addr: "cache:6379"
  default_ttl: 5m
minio:
  enabled: true
  endpoint: "minio:9000"
  access_key: "key"
  secret_key: "secret"
kafka:
  enabled: true
  brokers: ["kafka-1:9092", "kafka-2:9092"]
  topic: "viewer.state"
metrics:
  enabled: true
log:
  level: "debug"
  format: "console"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "AlphaCharges", cfg.Viewer.DefaultProfile)
	assert.Equal(t, 10*time.Second, cfg.Viewer.DownloadTimeout)
	assert.True(t, cfg.Viewer.AllowLocalFiles)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.DefaultTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "viewer.state", cfg.Kafka.Topic)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Logging().Format)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server: ["))
	assert.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "viewer:\n  default_profile: \"Mol*\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "viewer.default_profile")
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, "log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultViewerProfile, cfg.Viewer.DefaultProfile)
	assert.Equal(t, DefaultViewerFormat, cfg.Viewer.DefaultFormat)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("CHARGEVIEW_SERVER_PORT", "9999")
	t.Setenv("CHARGEVIEW_REDIS_ADDR", "other:6380")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "other:6380", cfg.Redis.Addr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHARGEVIEW_VIEWER_DEFAULT_FORMAT", "pdb")
	t.Setenv("CHARGEVIEW_KAFKA_ENABLED", "true")
	t.Setenv("CHARGEVIEW_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "pdb", cfg.Viewer.DefaultFormat)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

//Personal.AI order the ending
