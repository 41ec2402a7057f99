package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/turtacn/chargeview/internal/infrastructure/database/redis"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/prometheus"
)

// CachedFetcherConfig configures NewCachedFetcher.
type CachedFetcherConfig struct {
	Cache redis.Cache
	TTL   time.Duration
}

// cachedDownload is the value stored in the cache.
type cachedDownload struct {
	URL       string    `msgpack:"url" json:"url"`
	Bytes     []byte    `msgpack:"bytes" json:"bytes"`
	FetchedAt time.Time `msgpack:"fetched_at" json:"fetched_at"`
}

// CacheStatus describes the cached copy of one URL.
type CacheStatus struct {
	URL    string        `json:"url"`
	Key    string        `json:"key"`
	Cached bool          `json:"cached"`
	TTL    time.Duration `json:"ttl,omitempty"`
}

// DownloadCache inspects and evicts cached downloads.
type DownloadCache struct {
	cache redis.Cache
}

// NewDownloadCache wraps cache.
func NewDownloadCache(cache redis.Cache) *DownloadCache {
	return &DownloadCache{cache: cache}
}

const downloadKeyPrefix = "download:"

// CacheKey derives the cache key of rawURL.
func CacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return downloadKeyPrefix + hex.EncodeToString(sum[:])
}

// Status reports whether rawURL is cached and how long the copy lives.
func (c *DownloadCache) Status(ctx context.Context, rawURL string) (*CacheStatus, error) {
	st := &CacheStatus{URL: rawURL, Key: CacheKey(rawURL)}
	ok, err := c.cache.Exists(ctx, st.Key)
	if err != nil || !ok {
		return st, err
	}
	ttl, err := c.cache.TTL(ctx, st.Key)
	if err != nil {
		return st, err
	}
	st.Cached = true
	if ttl > 0 {
		st.TTL = ttl
	}
	return st, nil
}

// Invalidate drops rawURL from the cache.
func (c *DownloadCache) Invalidate(ctx context.Context, rawURL string) error {
	return c.cache.Delete(ctx, CacheKey(rawURL))
}

// Purge drops every cached download and returns how many were removed.
// Other entries under the same key prefix are left alone.
func (c *DownloadCache) Purge(ctx context.Context) (int64, error) {
	return c.cache.DeleteByPrefix(ctx, downloadKeyPrefix)
}

// CachedFetcher serves repeated downloads of one URL from the cache.  Cache
// failures fall back to the wrapped fetcher.
type CachedFetcher struct {
	*DownloadCache
	next    Fetcher
	ttl     time.Duration
	logger  logging.Logger
	metrics *prometheus.ViewerMetrics
}

// NewCachedFetcher wraps next.
func NewCachedFetcher(next Fetcher, cfg CachedFetcherConfig, logger logging.Logger, metrics *prometheus.ViewerMetrics) *CachedFetcher {
	return &CachedFetcher{DownloadCache: NewDownloadCache(cfg.Cache), next: next, ttl: cfg.TTL, logger: logger, metrics: metrics}
}

func (f *CachedFetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	loaded := false
	var entry cachedDownload
	err := f.cache.GetOrSet(ctx, CacheKey(rawURL), &entry, f.ttl, func(ctx context.Context) (interface{}, error) {
		loaded = true
		res, err := f.next.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return &cachedDownload{URL: rawURL, Bytes: res.Bytes, FetchedAt: time.Now().UTC()}, nil
	})
	if err != nil {
		if loaded {
			return nil, err
		}
		f.logger.Warn("download cache unavailable", logging.String("url", rawURL), logging.Err(err))
		return f.next.Fetch(ctx, rawURL)
	}
	f.metrics.RecordCacheAccess("redis", !loaded)
	return &Result{URL: rawURL, Bytes: entry.Bytes, Cached: !loaded}, nil
}

//Personal.AI order the ending
