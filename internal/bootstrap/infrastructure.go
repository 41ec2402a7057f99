// Package bootstrap connects the optional infrastructure named in the
// configuration and builds the structure fetcher on top of it.  Both the API
// server and the CLI start from here.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/turtacn/chargeview/internal/config"
	"github.com/turtacn/chargeview/internal/infrastructure/database/redis"
	"github.com/turtacn/chargeview/internal/infrastructure/fetch"
	"github.com/turtacn/chargeview/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/chargeview/internal/infrastructure/storage/minio"
	"github.com/turtacn/chargeview/internal/interfaces/http/handlers"
)

// Infrastructure holds the clients enabled in the configuration.  Disabled
// integrations stay nil.
type Infrastructure struct {
	Redis    *redis.Client
	Cache    redis.Cache
	MinIO    *minio.MinIOClient
	Producer *kafka.Producer

	cfg    *config.Config
	logger logging.Logger
}

// Connect dials every enabled integration.  A failure closes what was
// already opened.
func Connect(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{cfg: cfg, logger: logger}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(&redis.RedisConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		infra.Redis = client
		infra.Cache = redis.NewRedisCache(client, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
	}

	if cfg.MinIO.Enabled {
		client, err := minio.NewMinIOClient(&minio.MinIOConfig{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKey,
			SecretAccessKey: cfg.MinIO.SecretKey,
			Region:          cfg.MinIO.Region,
			UseSSL:          cfg.MinIO.UseSSL,
			MaxObjectBytes:  cfg.Viewer.MaxDownloadBytes,
		}, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("minio: %w", err)
		}
		infra.MinIO = client
	}

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxAttempts,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, logger)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		infra.Producer = producer
		infra.ensureTopics(ctx)
	}

	logger.Info("infrastructure initialized",
		logging.Bool("redis", infra.Redis != nil),
		logging.Bool("minio", infra.MinIO != nil),
		logging.Bool("kafka", infra.Producer != nil))
	return infra, nil
}

// ensureTopics creates the event topics.  Brokers that auto-create topics or
// deny admin calls still accept publishes, so failures only warn.
func (i *Infrastructure) ensureTopics(ctx context.Context) {
	topics := StateTopics(i.cfg.Kafka.Topic)
	tm, err := kafka.NewTopicManager(i.cfg.Kafka.Brokers, i.logger)
	if err != nil {
		i.logger.Warn("kafka topic manager unavailable", logging.Err(err))
		return
	}
	defer tm.Close()
	if err := tm.EnsureTopics(ctx, topics); err != nil {
		i.logger.Warn("failed to ensure kafka topics", logging.Err(err))
	}
}

// StateTopics is DefaultTopics with the control-state topic renamed to
// stateTopic.
func StateTopics(stateTopic string) []kafka.TopicConfig {
	topics := kafka.DefaultTopics(1)
	if stateTopic != "" {
		for n := range topics {
			if topics[n].Name == kafka.TopicControlsState {
				topics[n].Name = stateTopic
			}
		}
	}
	return topics
}

// Fetcher builds the scheme router for structure downloads: local files when
// allowed, http(s), s3 through MinIO, with remote downloads cached in Redis.
func (i *Infrastructure) Fetcher(metrics *prometheus.ViewerMetrics) fetch.Fetcher {
	opts := fetch.Options{
		AllowLocalFiles: i.cfg.Viewer.AllowLocalFiles,
		Timeout:         i.cfg.Viewer.DownloadTimeout,
		MaxBytes:        i.cfg.Viewer.MaxDownloadBytes,
	}
	if i.MinIO != nil {
		opts.Objects = i.MinIO
	}
	if i.Cache != nil {
		opts.Cache = &fetch.CachedFetcherConfig{Cache: i.Cache, TTL: i.cfg.Redis.DefaultTTL}
	}
	return fetch.NewDefaultRouter(opts, i.logger, metrics)
}

// DownloadCache exposes the cached downloads for administration, or nil
// when Redis is disabled.
func (i *Infrastructure) DownloadCache() *fetch.DownloadCache {
	if i.Cache == nil {
		return nil
	}
	return fetch.NewDownloadCache(i.Cache)
}

// HealthCheckers reports the connected integrations to the readiness probe.
func (i *Infrastructure) HealthCheckers() []handlers.HealthChecker {
	var out []handlers.HealthChecker
	if i.Cache != nil {
		out = append(out, handlers.HealthCheckFunc{ComponentName: "redis", Fn: i.Cache.Ping})
	}
	if i.MinIO != nil {
		out = append(out, handlers.HealthCheckFunc{ComponentName: "minio", Fn: func(ctx context.Context) error {
			_, err := i.MinIO.HealthCheck(ctx)
			return err
		}})
	}
	return out
}

// Close releases every open client.
func (i *Infrastructure) Close() {
	if i.Producer != nil {
		if err := i.Producer.Close(); err != nil {
			i.logger.Warn("kafka producer close failed", logging.Err(err))
		}
	}
	if i.MinIO != nil {
		_ = i.MinIO.Close()
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.logger.Warn("redis close failed", logging.Err(err))
		}
	}
}

//Personal.AI order the ending
