package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"file-share-api/config"
	"file-share-api/internal/application/ports"
	"file-share-api/internal/domain/file"
)

// Client stores file bytes in a single S3 compatible bucket.
type Client struct {
	logger *zap.Logger
	client *minio.Client
	region string
	bucket string
}

func New(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.S3,
) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.BucketUploads)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.BucketUploads, err)
	}
	if !exists {
		if err = mc.MakeBucket(ctx, cfg.BucketUploads, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.BucketUploads, err)
		}
		logger.Info("bucket created", zap.String("bucket", cfg.BucketUploads))
	}

	logger.Info("s3 connected successfully", zap.String("endpoint", cfg.Endpoint))

	return &Client{
		logger: logger,
		client: mc,
		region: cfg.Region,
		bucket: cfg.BucketUploads,
	}, nil
}

// Put writes content under path. Without opts.Overwrite an existing object is
// reported as file.ErrObjectExists. The existence check and the write are two
// requests, so the guard is best effort.
func (c *Client) Put(ctx context.Context, path string, content io.Reader, size int64, opts ports.PutOptions) error {
	if !opts.Overwrite {
		_, err := c.client.StatObject(ctx, c.bucket, path, minio.StatObjectOptions{})
		if err == nil {
			return fmt.Errorf("%s: %w", path, file.ErrObjectExists)
		}
		if !errors.Is(toStoreErr(err), file.ErrNotFound) {
			return toStoreErr(err)
		}
	}

	if _, err := c.client.PutObject(ctx, c.bucket, path, content, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	}); err != nil {
		return toStoreErr(err)
	}

	return nil
}

// SignedURL presigns a GET for path. Missing objects yield file.ErrNotFound
// instead of a URL that would fail later.
func (c *Client) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if _, err := c.client.StatObject(ctx, c.bucket, path, minio.StatObjectOptions{}); err != nil {
		return "", toStoreErr(err)
	}

	u, err := c.client.PresignedGetObject(ctx, c.bucket, path, ttl, nil)
	if err != nil {
		return "", toStoreErr(err)
	}

	return u.String(), nil
}

// Delete removes path. S3 deletes are idempotent, so the object is looked up
// first to be able to report file.ErrNotFound.
func (c *Client) Delete(ctx context.Context, path string) error {
	if _, err := c.client.StatObject(ctx, c.bucket, path, minio.StatObjectOptions{}); err != nil {
		return toStoreErr(err)
	}

	if err := c.client.RemoveObject(ctx, c.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return toStoreErr(err)
	}

	return nil
}

// Ready reports whether the bucket is reachable.
func (c *Client) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := c.client.BucketExists(ctx, c.bucket); err != nil {
		return fmt.Errorf("s3 not ready: %w", err)
	}
	return nil
}

func toStoreErr(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NotFound" || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", file.ErrNotFound, resp.Key)
	default:
		return fmt.Errorf("%w: %w", file.ErrStorage, err)
	}
}
