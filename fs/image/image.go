// Package image mounts read-only filesystem images as core.Backend values.
//
// Any io/fs.FS can be mounted with New. Zip-packaged images are opened with
// OpenZip, or with Mount when the archive itself lives on another backend.
// Every mutation fails with core.ErrReadOnly.
package image

import (
	"errors"
	"io"
	"io/fs"

	"github.com/klauspost/compress/zip"

	"github.com/jmgilman/go/xfer/fs/core"
)

// DefaultRoot is the root reported unless WithRoot is given.
const DefaultRoot = "img:/"

// FS is a read-only backend over an io/fs.FS.
type FS struct {
	fsys   fs.FS
	root   string
	closer io.Closer
}

// Option configures an FS.
type Option func(*FS)

// WithRoot sets the path prefix the image answers to.
func WithRoot(root string) Option {
	return func(f *FS) {
		f.root = root
	}
}

// New mounts fsys.
func New(fsys fs.FS, opts ...Option) *FS {
	f := &FS{fsys: fsys, root: DefaultRoot}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OpenZip mounts the zip archive readable through r.
func OpenZip(r io.ReaderAt, size int64, opts ...Option) (*FS, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return New(zr, opts...), nil
}

// Mount opens the zip archive at p on b and mounts it. The archive file must
// support io.ReaderAt. Close releases the archive handle.
func Mount(b core.Backend, p string, opts ...Option) (*FS, error) {
	st, err := b.Stat(p)
	if err != nil {
		return nil, err
	}
	f, err := b.Open(p)
	if err != nil {
		return nil, err
	}
	ra, ok := f.(io.ReaderAt)
	if !ok {
		_ = f.Close()
		return nil, core.PathError("mount", p, core.ErrUnsupported)
	}
	img, err := OpenZip(ra, st.Size, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	img.closer = f
	return img, nil
}

// Close releases the underlying archive handle, if any.
func (f *FS) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// Root returns the image's path prefix.
func (f *FS) Root() string { return f.root }

// Kind returns core.KindImage.
func (f *FS) Kind() core.Kind { return core.KindImage }

// IsNative returns false.
func (f *FS) IsNative() bool { return false }

func (f *FS) resolve(op, p string) (string, error) {
	rel, ok := core.Rel(f.root, p)
	if !ok {
		return "", core.PathError(op, p, core.ErrOutsideRoot)
	}
	if rel == "" {
		return ".", nil
	}
	return rel, nil
}

// List returns the entries of the directory at p sorted by name.
func (f *FS) List(p string, mode core.ListMode) ([]core.Entry, error) {
	name, err := f.resolve("list", p)
	if err != nil {
		return nil, err
	}
	dirents, err := fs.ReadDir(f.fsys, name)
	if err != nil {
		return nil, err
	}

	entries := make([]core.Entry, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() {
			if mode.Has(core.ListDirs) {
				entries = append(entries, core.DirEntry(d.Name()))
			}
			continue
		}
		if !mode.Has(core.ListFiles) {
			continue
		}
		e := core.FileEntry(d.Name(), core.SizeUnknown)
		if !mode.Has(core.ListNoFileSize) {
			info, err := d.Info()
			if err != nil {
				return nil, err
			}
			e.Size = info.Size()
			e.ModTime = info.ModTime()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Open opens the file at p for reading.
func (f *FS) Open(p string) (core.File, error) {
	name, err := f.resolve("open", p)
	if err != nil {
		return nil, err
	}
	file, err := f.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, core.PathError("open", p, core.ErrInvalid)
	}
	if ra, ok := file.(io.ReaderAt); ok {
		return &readerAtFile{File: File{file: file, name: p}, ra: ra}, nil
	}
	return &File{file: file, name: p}, nil
}

// Stat returns the entry describing p.
func (f *FS) Stat(p string) (core.Entry, error) {
	name, err := f.resolve("stat", p)
	if err != nil {
		return core.Entry{}, err
	}
	info, err := fs.Stat(f.fsys, name)
	if err != nil {
		return core.Entry{}, err
	}
	if info.IsDir() {
		e := core.DirEntry(core.Base(p))
		e.ModTime = info.ModTime()
		return e, nil
	}
	return core.Entry{Name: core.Base(p), Type: core.TypeFile, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Exists reports whether p exists in the image.
func (f *FS) Exists(p string) (bool, error) {
	_, err := f.Stat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDirEmpty reports whether the directory at p has no children.
func (f *FS) IsDirEmpty(p string) (bool, error) {
	name, err := f.resolve("readdir", p)
	if err != nil {
		return false, err
	}
	dirents, err := fs.ReadDir(f.fsys, name)
	if err != nil {
		return false, err
	}
	return len(dirents) == 0, nil
}

// Timestamp reports the modification time recorded in the image.
func (f *FS) Timestamp(p string) (core.Timestamp, error) {
	e, err := f.Stat(p)
	if err != nil {
		return core.Timestamp{}, err
	}
	return core.Timestamp{Created: e.ModTime, Modified: e.ModTime, Accessed: e.ModTime}, nil
}

// SetTimestamp always fails with core.ErrReadOnly.
func (f *FS) SetTimestamp(p string, _ core.Timestamp) error {
	return core.PathError("chtimes", p, core.ErrReadOnly)
}

// Create always fails with core.ErrReadOnly.
func (f *FS) Create(p string) (core.File, error) {
	return nil, core.PathError("create", p, core.ErrReadOnly)
}

// Mkdir always fails with core.ErrReadOnly.
func (f *FS) Mkdir(p string) error { return core.PathError("mkdir", p, core.ErrReadOnly) }

// MkdirAll always fails with core.ErrReadOnly.
func (f *FS) MkdirAll(p string) error { return core.PathError("mkdir", p, core.ErrReadOnly) }

// RemoveFile always fails with core.ErrReadOnly.
func (f *FS) RemoveFile(p string) error { return core.PathError("remove", p, core.ErrReadOnly) }

// RemoveDir always fails with core.ErrReadOnly.
func (f *FS) RemoveDir(p string) error { return core.PathError("rmdir", p, core.ErrReadOnly) }

// RenameFile always fails with core.ErrReadOnly.
func (f *FS) RenameFile(src, _ string) error { return core.PathError("rename", src, core.ErrReadOnly) }

// RenameDir always fails with core.ErrReadOnly.
func (f *FS) RenameDir(src, _ string) error { return core.PathError("rename", src, core.ErrReadOnly) }

// File is a read-only handle from an image.
type File struct {
	file fs.File
	name string
}

func (f *File) Read(p []byte) (int, error) { return f.file.Read(p) }

// Write always fails with core.ErrReadOnly.
func (f *File) Write([]byte) (int, error) {
	return 0, core.PathError("write", f.name, core.ErrReadOnly)
}

func (f *File) Close() error { return f.file.Close() }

func (f *File) Name() string { return f.name }

type readerAtFile struct {
	File
	ra io.ReaderAt
}

func (f *readerAtFile) ReadAt(p []byte, off int64) (int, error) {
	return f.ra.ReadAt(p, off)
}

// Compile-time interface checks.
var (
	_ core.Backend     = (*FS)(nil)
	_ core.Timestamper = (*FS)(nil)
	_ io.ReaderAt      = (*readerAtFile)(nil)
)
