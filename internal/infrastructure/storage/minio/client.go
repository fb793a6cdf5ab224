package minio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/Resonance-Intelligence/internal/config"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// ObjectAPI is the part of the MinIO SDK the artifact store relies on.
type ObjectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// sdkAPI adapts *minio.Client. GetObject stats the object up front so a
// missing key fails at open time rather than on first read.
type sdkAPI struct {
	*minio.Client
}

func (a sdkAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := a.Client.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

var ErrClientClosed = errors.New(errors.ErrCodeStorageError, "minio client is closed")

const (
	defaultRegion  = "us-east-1"
	defaultBucket  = "resonance-analyses"
	connectTimeout = 10 * time.Second
)

type Client struct {
	api    ObjectAPI
	bucket string
	region string
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewClient connects to the configured endpoint and makes sure the bucket
// exists.
func NewClient(cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.ErrCodeValidation, "minio endpoint is required")
	}
	sdk, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}

	c := newClient(sdkAPI{sdk}, cfg.Bucket, cfg.Region, log)
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	c.logger.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", c.bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

// NewClientFromAPI wraps an existing ObjectAPI. The bucket is not checked.
func NewClientFromAPI(api ObjectAPI, bucket string, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return newClient(api, bucket, "", log)
}

func newClient(api ObjectAPI, bucket, region string, log logging.Logger) *Client {
	if bucket == "" {
		bucket = defaultBucket
	}
	if region == "" {
		region = defaultRegion
	}
	return &Client{api: api, bucket: bucket, region: region, logger: log.Named("minio")}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}
	if exists {
		return nil
	}
	if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("failed to create bucket %s", c.bucket))
	}
	c.logger.Info("Created bucket", logging.String("bucket", c.bucket))
	return nil
}

// HealthCheck reports whether the bucket is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	api, err := c.API()
	if err != nil {
		return err
	}
	exists, err := api.BucketExists(ctx, c.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "minio unreachable")
	}
	if !exists {
		return errors.Newf(errors.ErrCodeServiceUnavailable, "bucket %s missing", c.bucket)
	}
	return nil
}

func (c *Client) Bucket() string { return c.bucket }

func (c *Client) API() (ObjectAPI, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	return c.api, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

//Personal.AI order the ending
