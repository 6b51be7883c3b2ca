package iocache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3ArtifactCache stores derived artifacts as objects in an S3-compatible bucket.
type S3ArtifactCache struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

var _ contract.ArtifactCache = &S3ArtifactCache{} // Compile-time check

// NewS3ArtifactCache creates an S3 artifact cache. The bucket is created lazily.
func NewS3ArtifactCache(cfg contract.S3Config) (*S3ArtifactCache, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		bucket = contract.DefaultS3Bucket
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = contract.DefaultS3Region
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client for %s: %w", endpoint, err)
	}
	return &S3ArtifactCache{client: client, bucket: bucket, region: region}, nil
}

func (sc *S3ArtifactCache) ensureBucket(ctx context.Context) error {
	sc.initOnce.Do(func() {
		exists, err := sc.client.BucketExists(ctx, sc.bucket)
		if err != nil {
			sc.initErr = err
			return
		}
		if exists {
			return
		}
		sc.initErr = sc.client.MakeBucket(ctx, sc.bucket, minio.MakeBucketOptions{Region: sc.region})
	})
	return sc.initErr
}

// Get downloads an artifact object.
func (sc *S3ArtifactCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := sc.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket %s: %w", sc.bucket, err)
	}
	obj, err := sc.client.GetObject(ctx, sc.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "NoSuchKey" || code == "NoSuchBucket" {
			return nil, contract.ErrArtifactNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put uploads an artifact object, replacing any previous version.
func (sc *S3ArtifactCache) Put(ctx context.Context, key string, data []byte) error {
	if err := sc.ensureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket %s: %w", sc.bucket, err)
	}
	_, err := sc.client.PutObject(ctx, sc.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

// GetStatus lists the bucket to count artifacts and their total size.
func (sc *S3ArtifactCache) GetStatus(ctx context.Context) (schema.ArtifactStatus, error) {
	status := schema.ArtifactStatus{Backend: string(schema.S3Backend)}
	if err := sc.ensureBucket(ctx); err != nil {
		return status, fmt.Errorf("failed to ensure bucket %s: %w", sc.bucket, err)
	}
	status.Connected = true
	for obj := range sc.client.ListObjects(ctx, sc.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return status, fmt.Errorf("failed to list artifacts: %w", obj.Err)
		}
		status.TotalEntries++
		status.TotalBytes += obj.Size
	}
	return status, nil
}

// Clear removes every artifact object from the bucket.
func (sc *S3ArtifactCache) Clear(ctx context.Context) error {
	exists, err := sc.client.BucketExists(ctx, sc.bucket)
	if err != nil || !exists {
		return err
	}
	objects := sc.client.ListObjects(ctx, sc.bucket, minio.ListObjectsOptions{Recursive: true})
	for rerr := range sc.client.RemoveObjects(ctx, sc.bucket, objects, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			return fmt.Errorf("failed to remove %s: %w", rerr.ObjectName, rerr.Err)
		}
	}
	return nil
}

// Close is a no-op; the minio client holds no persistent connection.
func (sc *S3ArtifactCache) Close() error {
	return nil
}
