package upload

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jmgilman/go/xfer/errors"
)

// S3Config configures an S3Transport.
type S3Config struct {
	// Endpoint overrides the AWS endpoint, e.g. for LocalStack or MinIO.
	// Setting it switches to path-style addressing.
	Endpoint string

	Bucket string
	Region string

	// AccessKey and SecretKey select static credentials. When empty the
	// default AWS credential chain is used.
	AccessKey string
	SecretKey string

	// Prefix namespaces uploaded keys.
	Prefix string
}

// S3Transport uploads with the AWS SDK.
type S3Transport struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Transport loads AWS configuration and creates a transport.
func NewS3Transport(ctx context.Context, cfg S3Config) (*S3Transport, error) {
	if cfg.Bucket == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to load aws config")
	}

	// The body is pulled on demand and cannot be rewound to hash it, so the
	// payload is sent unsigned on plain http endpoints too.
	s3Opts := []func(*s3.Options){
		s3.WithAPIOptions(v4.SwapComputePayloadSHA256ForUnsignedPayloadMiddleware),
	}
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Transport{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Upload sends the pulled bytes as a single PutObject.
func (t *S3Transport) Upload(ctx context.Context, name string, size int64, pull PullFunc) error {
	key := objectKey(t.prefix, name)
	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(t.bucket),
		Key:           aws.String(key),
		Body:          NewPullReader(pull),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/octet-stream"),
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
