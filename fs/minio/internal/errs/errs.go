// Package errs translates MinIO responses into io/fs errors.
package errs

import (
	"fmt"
	"io/fs"

	"github.com/minio/minio-go/v7"
)

// Translate converts MinIO error responses into io/fs sentinels so callers
// can match them with errors.Is.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "XMinioInvalidObjectName":
		return fs.ErrNotExist
	case "AccessDenied":
		return fs.ErrPermission
	case "XMinioObjectExistsAsDirectory", "XMinioParentIsObject":
		return fs.ErrExist
	}

	return fmt.Errorf("minio: %w", err)
}

// PathError wraps a translated err in an fs.PathError. Returns nil if err is
// nil.
func PathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: path, Err: Translate(err)}
}
