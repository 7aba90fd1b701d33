// Package archive implements the zip streaming contract used by the transfer
// engine: create an archive on a backend and stream entries into it, or open
// one and stream its entries back out.
//
// Members with an already-compressed extension are stored, everything else
// is deflated.
package archive

import (
	stderrors "errors"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
)

// DefaultComment is written into every archive unless overridden.
const DefaultComment = "xfer"

// ErrLimitExceeded is wrapped by validators when an extraction limit is hit.
var ErrLimitExceeded = stderrors.New("extraction limit exceeded")

// storedExts lists extensions whose content is not worth deflating.
var storedExts = map[string]struct{}{
	"zip": {}, "xz": {}, "7z": {}, "rar": {}, "tar": {},
	"nca": {}, "nsp": {}, "xci": {}, "nsz": {}, "xcz": {},
}

// IsCompressed reports whether name has an extension that is stored rather
// than deflated.
func IsCompressed(name string) bool {
	_, ok := storedExts[core.Ext(name)]
	return ok
}

// WriterOption configures a Writer.
type WriterOption func(*writerOptions)

type writerOptions struct {
	comment string
	level   int
}

// WithComment sets the archive comment.
func WithComment(comment string) WriterOption {
	return func(o *writerOptions) {
		o.comment = comment
	}
}

// WithLevel sets the deflate level, from flate.BestSpeed to
// flate.BestCompression.
func WithLevel(level int) WriterOption {
	return func(o *writerOptions) {
		o.level = level
	}
}

// Writer streams entries into a zip file on a backend.
type Writer struct {
	file    core.File
	zw      *zip.Writer
	path    string
	comment string
	entries int
}

// Create creates path on b and returns a Writer for it. The file is
// truncated if it exists.
func Create(b core.Backend, path string, opts ...WriterOption) (*Writer, error) {
	o := writerOptions{comment: DefaultComment, level: flate.DefaultCompression}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := b.Create(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeArchive, "failed to create archive",
			map[string]interface{}{"path": path})
	}

	zw := zip.NewWriter(f)
	level := o.level
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	return &Writer{file: f, zw: zw, path: path, comment: o.comment}, nil
}

// Path returns the archive's path on its backend.
func (w *Writer) Path() string { return w.path }

// Len returns the number of entries written so far.
func (w *Writer) Len() int { return w.entries }

// NewEntry starts a member called name. The returned writer is valid until
// the next NewEntry or Close.
func (w *Writer) NewEntry(name string, modTime time.Time) (io.Writer, error) {
	if err := ValidateEntryName(name); err != nil {
		return nil, err
	}

	method := zip.Deflate
	if IsCompressed(name) {
		method = zip.Store
	}
	if modTime.IsZero() {
		modTime = time.Now()
	}

	ew, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: modTime,
	})
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeArchive, "failed to add archive entry",
			map[string]interface{}{"name": name, "archive": w.path})
	}
	w.entries++
	return ew, nil
}

// Close writes the central directory and closes the underlying file.
func (w *Writer) Close() error {
	var errs []error
	if err := w.zw.SetComment(w.comment); err != nil {
		errs = append(errs, err)
	}
	if err := w.zw.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := stderrors.Join(errs...); err != nil {
		return errors.WrapWithContext(err, errors.CodeArchive, "failed to finalise archive",
			map[string]interface{}{"path": w.path})
	}
	return nil
}
