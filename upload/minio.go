package upload

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jmgilman/go/xfer/errors"
)

// MinioConfig configures a MinioTransport.
type MinioConfig struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Prefix namespaces uploaded keys.
	Prefix string

	// Client is an optional pre-configured client. When set, Endpoint and
	// the keys are ignored.
	Client *minio.Client
}

// MinioTransport uploads to a bucket on MinIO or any S3-compatible store.
type MinioTransport struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioTransport creates a transport from cfg.
func NewMinioTransport(cfg MinioConfig) (*MinioTransport, error) {
	if cfg.Bucket == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "bucket is required")
	}

	client := cfg.Client
	if client == nil {
		if cfg.Endpoint == "" {
			return nil, errors.New(errors.CodeInvalidConfig, "endpoint is required when client is not provided")
		}
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to create minio client")
		}
	}

	return &MinioTransport{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Upload streams the pulled bytes into bucket/prefix/name.
func (t *MinioTransport) Upload(ctx context.Context, name string, size int64, pull PullFunc) error {
	key := objectKey(t.prefix, name)
	_, err := t.client.PutObject(ctx, t.bucket, key, NewPullReader(pull), size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), errors.CodeCancelled, "upload cancelled")
		}
		return errors.WrapWithContext(err, errors.CodeNetwork, fmt.Sprintf("failed to upload %s", name),
			map[string]interface{}{"bucket": t.bucket, "key": key})
	}
	return nil
}
