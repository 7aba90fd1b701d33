// Package minio provides a network-share backend over MinIO or any
// S3-compatible object store.
package minio

import (
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
)

// DefaultRoot is the root reported unless Config.Root is set.
const DefaultRoot = "s3:/"

// Config holds network-share configuration.
type Config struct {
	// Endpoint is the server address (e.g., "localhost:9000").
	Endpoint string

	// Bucket is the bucket holding the share.
	Bucket string

	// AccessKey is the access key ID for authentication.
	AccessKey string

	// SecretKey is the secret access key for authentication.
	SecretKey string

	// UseSSL enables HTTPS connections.
	UseSSL bool

	// Prefix namespaces every object key.
	Prefix string

	// Root is the path prefix the backend answers to. Default: DefaultRoot.
	Root string

	// Client is an optional pre-configured client. When set,
	// Endpoint/AccessKey/SecretKey are ignored.
	Client *minio.Client

	// MultipartThreshold is the buffered size after which writes stream
	// through a multipart upload. Default: 5MB.
	MultipartThreshold int64

	// MaxRenameConcurrency limits concurrent copies during a directory
	// rename. Default: 10.
	MaxRenameConcurrency int
}

// validate checks that either Client or the connection fields are set.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.Root != "" && !strings.HasSuffix(c.Root, "/") {
		return fmt.Errorf("root %q must end with a slash", c.Root)
	}

	if c.Client != nil {
		return nil
	}

	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required when client is not provided")
	}

	return nil
}
