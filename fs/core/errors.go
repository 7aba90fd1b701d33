package core

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotExist is re-exported from io/fs for convenience.
	ErrNotExist = fs.ErrNotExist

	// ErrExist is re-exported from io/fs for convenience.
	ErrExist = fs.ErrExist

	// ErrPermission is re-exported from io/fs for convenience.
	ErrPermission = fs.ErrPermission

	// ErrInvalid is re-exported from io/fs for convenience.
	ErrInvalid = fs.ErrInvalid

	// ErrNotEmpty is returned by RemoveDir when the directory has children.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrReadOnly is returned by every mutation on a read-only backend.
	ErrReadOnly = errors.New("read-only filesystem")

	// ErrUnsupported is returned when a backend lacks an operation.
	ErrUnsupported = errors.New("operation not supported")

	// ErrOutsideRoot is returned when a path does not start with the
	// backend's root.
	ErrOutsideRoot = errors.New("path outside backend root")
)

// PathError builds a *fs.PathError for op on path.
func PathError(op, path string, err error) error {
	return &fs.PathError{Op: op, Path: path, Err: err}
}
