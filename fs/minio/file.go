package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/fs/minio/internal/errs"
)

// readFile streams an object without buffering it. ReadAt issues a
// dedicated range request and does not move the stream position.
type readFile struct {
	fs     *FS
	key    string
	name   string
	size   int64
	obj    *minio.Object
	closed bool
}

func newReadFile(ctx context.Context, m *FS, key, name string) (*readFile, error) {
	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, errs.PathError("open", name, err)
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errs.PathError("open", name, err)
	}
	return &readFile{fs: m, key: key, name: name, size: info.Size, obj: obj}, nil
}

func (f *readFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, core.PathError("read", f.name, fs.ErrClosed)
	}
	n, err := f.obj.Read(p)
	if n > 0 && errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

// ReadAt implements io.ReaderAt with an HTTP range request.
func (f *readFile) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, core.PathError("readat", f.name, fs.ErrClosed)
	}
	if off < 0 {
		return 0, core.PathError("readat", f.name, fs.ErrInvalid)
	}
	if off >= f.size {
		return 0, io.EOF
	}
	end := off + int64(len(p)) - 1
	if end >= f.size {
		end = f.size - 1
	}

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(off, end); err != nil {
		return 0, core.PathError("readat", f.name, err)
	}
	// nolint:contextcheck // io.ReaderAt cannot accept a context
	obj, err := f.fs.client.GetObject(context.Background(), f.fs.bucket, f.key, opts)
	if err != nil {
		return 0, errs.PathError("readat", f.name, err)
	}
	defer func() { _ = obj.Close() }()

	want := int(end - off + 1)
	n, err := io.ReadFull(obj, p[:want])
	if err != nil {
		return n, err
	}
	if want < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *readFile) Write([]byte) (int, error) {
	return 0, core.PathError("write", f.name, fs.ErrInvalid)
}

func (f *readFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.obj.Close()
}

func (f *readFile) Name() string { return f.name }

// writeFile buffers small writes and switches to a streaming PutObject once
// the buffered size passes the multipart threshold. The object becomes
// visible on Close.
type writeFile struct {
	fs     *FS
	key    string
	name   string
	buffer *bytes.Buffer
	pipeW  *io.PipeWriter
	putRes chan error
	closed bool
}

func newWriteFile(m *FS, key, name string) *writeFile {
	return &writeFile{fs: m, key: key, name: name, buffer: new(bytes.Buffer)}
}

func (f *writeFile) Read([]byte) (int, error) {
	return 0, core.PathError("read", f.name, fs.ErrInvalid)
}

// nolint:contextcheck // io.Writer cannot accept a context
func (f *writeFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, core.PathError("write", f.name, fs.ErrClosed)
	}
	if f.pipeW == nil && int64(f.buffer.Len()+len(p)) <= f.fs.multipartThreshold {
		return f.buffer.Write(p)
	}
	if f.pipeW == nil {
		if err := f.startStreaming(); err != nil {
			return 0, err
		}
	}
	n, err := f.pipeW.Write(p)
	if err != nil {
		return n, core.PathError("write", f.name, err)
	}
	return n, nil
}

// startStreaming starts the background upload and flushes the buffer into it.
func (f *writeFile) startStreaming() error {
	pr, pw := io.Pipe()
	f.pipeW = pw
	f.putRes = make(chan error, 1)

	go func() {
		_, err := f.fs.client.PutObject(context.Background(), f.fs.bucket, f.key, pr, -1,
			minio.PutObjectOptions{ContentType: "application/octet-stream"})
		_ = pr.CloseWithError(err)
		f.putRes <- err
		close(f.putRes)
	}()

	if f.buffer.Len() > 0 {
		if _, err := pw.Write(f.buffer.Bytes()); err != nil {
			return core.PathError("write", f.name, err)
		}
	}
	f.buffer = nil
	return nil
}

// Close finishes the upload.
func (f *writeFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.pipeW != nil {
		_ = f.pipeW.Close()
		return errs.PathError("close", f.name, <-f.putRes)
	}

	_, err := f.fs.client.PutObject(context.Background(), f.fs.bucket, f.key,
		bytes.NewReader(f.buffer.Bytes()), int64(f.buffer.Len()),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	return errs.PathError("close", f.name, err)
}

func (f *writeFile) Name() string { return f.name }

// Compile-time interface checks.
var (
	_ core.File   = (*readFile)(nil)
	_ io.ReaderAt = (*readFile)(nil)
	_ core.File   = (*writeFile)(nil)
)
