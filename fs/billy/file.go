package billy

import (
	"io"

	"github.com/go-git/go-billy/v5"

	"github.com/jmgilman/go/xfer/fs/core"
)

// File wraps billy.File. It keeps the root-prefixed path it was opened with
// because billy.File.Name differs between osfs and memfs.
type File struct {
	file billy.File
	name string
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	return f.file.Read(p)
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.file.ReadAt(p, off)
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

// Close implements io.Closer.
func (f *File) Close() error {
	return f.file.Close()
}

// Name returns the path provided to Open or Create.
func (f *File) Name() string {
	return f.name
}

// Compile-time interface checks.
var (
	_ core.File   = (*File)(nil)
	_ io.ReaderAt = (*File)(nil)
)
