package archive

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
)

// Entry describes one archive member.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool

	file *zip.File
}

// Reader reads a zip file stored on a backend.
type Reader struct {
	file    core.File
	zr      *zip.Reader
	path    string
	entries []Entry
}

// Open opens the archive at path on b. Backends whose files implement
// io.ReaderAt are read in place; others are buffered in memory.
func Open(b core.Backend, path string) (*Reader, error) {
	info, err := b.Stat(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeArchive, "failed to open archive",
			map[string]interface{}{"path": path})
	}

	f, err := b.Open(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeArchive, "failed to open archive",
			map[string]interface{}{"path": path})
	}

	var ra io.ReaderAt
	size := info.Size
	if r, ok := f.(io.ReaderAt); ok {
		ra = r
	} else {
		data, err := io.ReadAll(f)
		if err != nil {
			_ = f.Close()
			return nil, errors.WrapWithContext(err, errors.CodeIO, "failed to read archive",
				map[string]interface{}{"path": path})
		}
		ra = bytes.NewReader(data)
		size = int64(len(data))
	}

	zr, err := zip.NewReader(ra, size)
	if err != nil {
		_ = f.Close()
		return nil, errors.WrapWithContext(err, errors.CodeArchive, "failed to read archive directory",
			map[string]interface{}{"path": path})
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, zf := range zr.File {
		entries = append(entries, Entry{
			Name:    zf.Name,
			Size:    int64(zf.UncompressedSize64),
			ModTime: zf.Modified,
			IsDir:   strings.HasSuffix(zf.Name, "/") || zf.FileInfo().IsDir(),
			file:    zf,
		})
	}

	return &Reader{file: f, zr: zr, path: path, entries: entries}, nil
}

// Path returns the archive's path on its backend.
func (r *Reader) Path() string { return r.path }

// Entries returns the archive members in central directory order.
func (r *Reader) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// OpenEntry opens a member for reading.
func (r *Reader) OpenEntry(e Entry) (io.ReadCloser, error) {
	if e.file == nil {
		return nil, errors.WithContext(errors.New(errors.CodeInvalidInput, "entry does not belong to an archive"),
			"name", e.Name)
	}
	rc, err := e.file.Open()
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeArchive, "failed to open archive entry",
			map[string]interface{}{"name": e.Name, "archive": r.path})
	}
	return rc, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// PeekFirstFileName returns the name of the first regular file in the
// archive at path, or "" if it holds none.
func PeekFirstFileName(b core.Backend, path string) (string, error) {
	r, err := Open(b, path)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()

	for _, e := range r.entries {
		if !e.IsDir {
			return e.Name, nil
		}
	}
	return "", nil
}
