// Package fetch downloads structure files by URL scheme: local paths,
// http(s) and s3://bucket/key through MinIO, optionally behind the Redis
// download cache.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/chargeview/pkg/errors"
)

// Schemes recognised by Router.
const (
	SchemeFile  = "file"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeS3    = "s3"
)

// DefaultMaxBytes caps a single download when no limit is configured.
const DefaultMaxBytes int64 = 256 << 20

// Result is a downloaded file.
type Result struct {
	URL    string
	Bytes  []byte
	Cached bool
}

// Fetcher downloads one URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Result, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, rawURL string) (*Result, error)

func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	return f(ctx, rawURL)
}

// Scheme returns the lower-case scheme of rawURL; bare paths yield "file".
func Scheme(rawURL string) string {
	u, err := url.Parse(rawURL)
	// single letters are windows drive names
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return SchemeFile
	}
	return strings.ToLower(u.Scheme)
}

func fetchError(rawURL, msg string, cause error) error {
	e := errors.New(errors.CodeFetchFailed, msg).WithDetail(rawURL)
	if cause != nil {
		return e.WithCause(cause)
	}
	return e
}

// ─────────────────────────────────────────────────────────────────────────────
// Local files
// ─────────────────────────────────────────────────────────────────────────────

// FileFetcher reads bare paths and file:// URLs.
type FileFetcher struct {
	MaxBytes int64
}

func (f *FileFetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	path := rawURL
	if strings.HasPrefix(strings.ToLower(rawURL), "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fetchError(rawURL, "invalid file URL", err)
		}
		path = u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = u.Host + u.Path
		}
	}
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("structure file not found").WithDetail(path).WithCause(err)
		}
		return nil, fetchError(rawURL, "failed to stat file", err)
	}
	if info.IsDir() {
		return nil, fetchError(rawURL, "path is a directory", nil)
	}
	if max := limit(f.MaxBytes); info.Size() > max {
		return nil, fetchError(rawURL, fmt.Sprintf("file exceeds %d bytes", max), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fetchError(rawURL, "failed to read file", err)
	}
	return &Result{URL: rawURL, Bytes: data}, nil
}

func limit(max int64) int64 {
	if max <= 0 {
		return DefaultMaxBytes
	}
	return max
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTP
// ─────────────────────────────────────────────────────────────────────────────

// HTTPFetcher downloads http(s) URLs.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
	// UserAgent is sent when non-empty.
	UserAgent string
}

// NewHTTPFetcher returns an HTTPFetcher with its own client and timeout.
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		MaxBytes:  maxBytes,
		UserAgent: "chargeview",
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fetchError(rawURL, "invalid URL", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fetchError(rawURL, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotFound("structure not found at URL").WithDetail(rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fetchError(rawURL, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	max := limit(f.MaxBytes)
	data, err := io.ReadAll(io.LimitReader(resp.Body, max+1))
	if err != nil {
		return nil, fetchError(rawURL, "failed to read body", err)
	}
	if int64(len(data)) > max {
		return nil, fetchError(rawURL, fmt.Sprintf("response exceeds %d bytes", max), nil)
	}
	return &Result{URL: rawURL, Bytes: data}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Object storage
// ─────────────────────────────────────────────────────────────────────────────

// ObjectGetter reads a whole object.  minio.MinIOClient satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// S3Fetcher resolves s3://bucket/key URLs.
type S3Fetcher struct {
	Store ObjectGetter
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(rawURL string) (bucket, key string, err error) {
	u, perr := url.Parse(rawURL)
	if perr != nil || !strings.EqualFold(u.Scheme, SchemeS3) {
		return "", "", fetchError(rawURL, "not an s3 URL", perr)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fetchError(rawURL, "s3 URL must look like s3://bucket/key", nil)
	}
	return u.Host, key, nil
}

func (f *S3Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	bucket, key, err := ParseS3URL(rawURL)
	if err != nil {
		return nil, err
	}
	data, err := f.Store.GetObject(ctx, bucket, key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		return nil, fetchError(rawURL, "object download failed", err)
	}
	return &Result{URL: rawURL, Bytes: data}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Router
// ─────────────────────────────────────────────────────────────────────────────

// Router dispatches on URL scheme.
type Router struct {
	fetchers map[string]Fetcher
	metrics  *prometheus.ViewerMetrics
	logger   logging.Logger
}

// NewRouter returns an empty Router.
func NewRouter(logger logging.Logger, metrics *prometheus.ViewerMetrics) *Router {
	return &Router{fetchers: make(map[string]Fetcher), metrics: metrics, logger: logger}
}

// Handle registers f for the given schemes.
func (r *Router) Handle(f Fetcher, schemes ...string) *Router {
	for _, s := range schemes {
		r.fetchers[strings.ToLower(s)] = f
	}
	return r
}

// Supports reports whether a fetcher is registered for scheme.
func (r *Router) Supports(scheme string) bool {
	_, ok := r.fetchers[strings.ToLower(scheme)]
	return ok
}

func (r *Router) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	scheme := Scheme(rawURL)
	f, ok := r.fetchers[scheme]
	if !ok {
		return nil, errors.InvalidReference("unsupported URL scheme").WithDetail(scheme)
	}
	start := time.Now()
	res, err := f.Fetch(ctx, rawURL)
	if err != nil {
		r.metrics.RecordDownload(scheme, 0, err)
		r.logger.Warn("download failed", logging.String("url", rawURL), logging.Err(err))
		return nil, err
	}
	r.metrics.RecordDownload(scheme, len(res.Bytes), nil)
	r.logger.Debug("downloaded",
		logging.String("url", rawURL),
		logging.Int("bytes", len(res.Bytes)),
		logging.Bool("cached", res.Cached),
		logging.Duration("took", time.Since(start)))
	return res, nil
}

// Options configures NewDefaultRouter.
type Options struct {
	AllowLocalFiles bool
	Timeout         time.Duration
	MaxBytes        int64
	// Objects enables s3:// when non-nil.
	Objects ObjectGetter
	// Cache wraps the remote fetchers when non-nil.
	Cache *CachedFetcherConfig
}

// NewDefaultRouter wires the standard fetchers.  Local files are never
// cached.
func NewDefaultRouter(opts Options, logger logging.Logger, metrics *prometheus.ViewerMetrics) *Router {
	r := NewRouter(logger, metrics)
	if opts.AllowLocalFiles {
		r.Handle(&FileFetcher{MaxBytes: opts.MaxBytes}, SchemeFile)
	}

	wrap := func(f Fetcher) Fetcher {
		if opts.Cache == nil {
			return f
		}
		return NewCachedFetcher(f, *opts.Cache, logger, metrics)
	}
	r.Handle(wrap(NewHTTPFetcher(opts.Timeout, opts.MaxBytes)), SchemeHTTP, SchemeHTTPS)
	if opts.Objects != nil {
		r.Handle(wrap(&S3Fetcher{Store: opts.Objects}), SchemeS3)
	}
	return r
}

//Personal.AI order the ending
