// Package upload defines the pull-based upload contract and its transports.
//
// The transport owns buffer sizing and timing: it repeatedly calls a
// PullFunc to fill its buffer, and the engine services each call by reading
// the next bytes of the source file. A zero-byte pull ends the stream.
package upload

import (
	"context"
	"io"
	"strings"
)

// PullFunc fills p with the next bytes of the file being uploaded and
// returns how many were written. Returning 0 with a nil error signals end of
// stream.
type PullFunc func(p []byte) (int, error)

// Transport sends one file to a remote location.
type Transport interface {
	// Upload sends size bytes pulled through pull and stores them under
	// name, a slash-separated path relative to the location.
	Upload(ctx context.Context, name string, size int64, pull PullFunc) error
}

// Location is a named upload target.
type Location struct {
	Name      string
	Transport Transport
}

// pullReader adapts a PullFunc to io.Reader.
type pullReader struct {
	pull PullFunc
	done bool
}

// NewPullReader returns a reader that pulls from pull until it returns 0 or
// an error. A zero-byte pull is reported as io.EOF.
func NewPullReader(pull PullFunc) io.Reader {
	return &pullReader{pull: pull}
}

func (r *pullReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.pull(p)
	if err != nil {
		r.done = true
		return n, err
	}
	if n == 0 {
		r.done = true
		return 0, io.EOF
	}
	return n, nil
}

// objectKey joins prefix and name into an object key.
func objectKey(prefix, name string) string {
	name = strings.TrimLeft(name, "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
