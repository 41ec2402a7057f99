// Package redis wraps go-redis for the structure download cache.
package redis

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/pkg/errors"
)

var (
	ErrClientClosed     = errors.New(errors.ErrCodeInternal, "redis client is closed")
	ErrConnectionFailed = errors.New(errors.ErrCodeCacheError, "redis connection failed")
)

// RedisConfig holds connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// Client is a closable go-redis client.  Commands issued after Close fail
// with ErrClientClosed.
type Client struct {
	rdb    redis.UniversalClient
	config *RedisConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewClient connects and pings the server.
func NewClient(cfg *RedisConfig, log logging.Logger) (*Client, error) {
	applyDefaults(cfg)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	})

	client := &Client{
		rdb:    rdb,
		config: cfg,
		logger: log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		rdb.Close()
		return nil, ErrConnectionFailed.WithCause(err)
	}

	log.Info("Redis client connected", logging.String("addr", cfg.Addr), logging.Int("db", cfg.DB))
	return client, nil
}

// NewClientFromUniversal wraps an existing go-redis client.  Tests use it with
// redismock.
func NewClientFromUniversal(rdb redis.UniversalClient, log logging.Logger) *Client {
	return &Client{rdb: rdb, config: &RedisConfig{}, logger: log}
}

func applyDefaults(cfg *RedisConfig) {
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 10 * runtime.GOMAXPROCS(0)
	}
	if cfg.MinIdleConns == 0 {
		cfg.MinIdleConns = 2
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 3 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
}

func (c *Client) Ping(ctx context.Context) error {
	if c.isClosed() {
		return ErrClientClosed
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.rdb.Close()
	if err == nil {
		c.logger.Info("Closed Redis client")
	} else {
		c.logger.Error("Failed to close Redis client", logging.Err(err))
	}
	return err
}

// Commands

func (c *Client) Get(ctx context.Context, key string) *redis.StringCmd {
	if c.isClosed() {
		return errorStringCmd(ErrClientClosed)
	}
	return c.rdb.Get(ctx, key)
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if c.isClosed() {
		return errorStatusCmd(ErrClientClosed)
	}
	return c.rdb.Set(ctx, key, value, expiration)
}

func (c *Client) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.isClosed() {
		return errorIntCmd(ErrClientClosed)
	}
	return c.rdb.Del(ctx, keys...)
}

func (c *Client) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	if c.isClosed() {
		return errorIntCmd(ErrClientClosed)
	}
	return c.rdb.Exists(ctx, keys...)
}

func (c *Client) TTL(ctx context.Context, key string) *redis.DurationCmd {
	if c.isClosed() {
		cmd := redis.NewDurationCmd(context.Background(), 0)
		cmd.SetErr(ErrClientClosed)
		return cmd
	}
	return c.rdb.TTL(ctx, key)
}

func (c *Client) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	if c.isClosed() {
		cmd := redis.NewScanCmd(ctx, nil)
		cmd.SetErr(ErrClientClosed)
		return cmd
	}
	return c.rdb.Scan(ctx, cursor, match, count)
}

// Helper methods

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func errorStringCmd(err error) *redis.StringCmd {
	cmd := redis.NewStringCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errorStatusCmd(err error) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

func errorIntCmd(err error) *redis.IntCmd {
	cmd := redis.NewIntCmd(context.Background())
	cmd.SetErr(err)
	return cmd
}

//Personal.AI order the ending
