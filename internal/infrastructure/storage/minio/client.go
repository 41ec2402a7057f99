// Package minio reads and writes structure files in S3-compatible object
// storage.  It serves s3://bucket/key URLs for the scene engine download step
// and the annotate command's upload target.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/pkg/errors"
)

var (
	ErrMinIOClientClosed = errors.New(errors.ErrCodeInternal, "minio client is closed")
	ErrObjectNotFound    = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrObjectTooLarge    = errors.New(errors.ErrCodeStorageError, "object exceeds size limit")
	ErrBucketNotFound    = errors.New(errors.ErrCodeNotFound, "bucket not found")
)

// MinIOAPI is the subset of the SDK used here.  GetObject returns a plain
// io.ReadCloser so tests can stub it.
type MinIOAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type sdkClient struct {
	*minio.Client
}

func (s sdkClient) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return s.Client.GetObject(ctx, bucketName, objectName, opts)
}

type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	// MaxObjectBytes caps GetObject; 0 means unlimited.
	MaxObjectBytes int64 `mapstructure:"max_object_bytes"`
}

type MinIOClient struct {
	client MinIOAPI
	config *MinIOConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewMinIOClient connects and verifies credentials by listing buckets.
func NewMinIOClient(cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	applyDefaults(cfg)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}

	log.Info("MinIO client connected", logging.String("endpoint", cfg.Endpoint), logging.Bool("ssl", cfg.UseSSL))
	return NewMinIOClientWithAPI(sdkClient{client}, cfg, log), nil
}

// NewMinIOClientWithAPI wraps an existing API implementation.
func NewMinIOClientWithAPI(api MinIOAPI, cfg *MinIOConfig, log logging.Logger) *MinIOClient {
	applyDefaults(cfg)
	return &MinIOClient{client: api, config: cfg, logger: log}
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
}

func (c *MinIOClient) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// GetObject reads a whole object.  Objects larger than MaxObjectBytes are
// rejected before the body is fetched.
func (c *MinIOClient) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if c.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	info, err := c.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound.WithDetail(bucket + "/" + key)
		}
		if minio.ToErrorResponse(err).Code == "NoSuchBucket" {
			return nil, ErrBucketNotFound.WithDetail(bucket)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat object")
	}
	if max := c.config.MaxObjectBytes; max > 0 && info.Size > max {
		return nil, ErrObjectTooLarge.WithDetailf("%s/%s is %d bytes, limit %d", bucket, key, info.Size, max)
	}

	obj, err := c.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to get object")
	}
	defer obj.Close()

	var buf bytes.Buffer
	if info.Size > 0 {
		buf.Grow(int(info.Size))
	}
	if _, err := io.Copy(&buf, obj); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to read object")
	}
	c.logger.Debug("Object downloaded",
		logging.String("bucket", bucket),
		logging.String("key", key),
		logging.Int64("bytes", int64(buf.Len())),
	)
	return buf.Bytes(), nil
}

// PutObject uploads data with the given content type.
func (c *MinIOClient) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if c.isClosed() {
		return ErrMinIOClientClosed
	}
	exists, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket existence")
	}
	if !exists {
		return ErrBucketNotFound.WithDetail(bucket)
	}
	info, err := c.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("failed to upload %s/%s", bucket, key))
	}
	c.logger.Info("Object uploaded",
		logging.String("bucket", bucket),
		logging.String("key", key),
		logging.Int64("bytes", info.Size),
	)
	return nil
}

func (c *MinIOClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Error   string
}

// HealthCheck lists buckets and reports the round-trip latency.
func (c *MinIOClient) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()
	_, err := c.client.ListBuckets(ctx)
	status := &HealthStatus{Healthy: err == nil, Latency: time.Since(start)}
	if err != nil {
		status.Error = err.Error()
		return status, err
	}
	return status, nil
}

//Personal.AI order the ending
