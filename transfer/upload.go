package transfer

import (
	"io"

	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/metrics"
	"github.com/jmgilman/go/xfer/session"
	"github.com/jmgilman/go/xfer/stash"
	"github.com/jmgilman/go/xfer/upload"
)

// Upload sends every selected file, and every file below a selected
// directory, through tr. Remote names are relative to the stash directory.
//
// The transport pulls data: each pull reads the next bytes of the file at
// the running offset, and once the offset reaches the size captured when
// the file was listed the pull returns 0 to end the stream. The size is not
// re-checked mid-upload.
func (e *Engine) Upload(s *session.Session, st *stash.Stash, tr upload.Transport) error {
	b := st.Backend()

	return e.run(s, "upload", func(t *tally) error {
		for _, entry := range st.Entries() {
			if err := checkpoint(s); err != nil {
				return err
			}

			if entry.IsFile() {
				n, err := e.uploadFile(s, b, st.Path(), st.EntryPath(entry), entry, tr)
				if err != nil {
					return err
				}
				t.files++
				t.bytes += n
				continue
			}

			cs, err := e.collectEntry(s, st, entry, true)
			if err != nil {
				return err
			}
			for _, c := range cs {
				for _, f := range c.Files {
					if err := checkpoint(s); err != nil {
						return err
					}
					n, err := e.uploadFile(s, b, st.Path(), core.Join(c.Path, f.Name), f, tr)
					if err != nil {
						return err
					}
					t.files++
					t.bytes += n
				}
			}
		}
		return nil
	})
}

func (e *Engine) uploadFile(s *session.Session, b core.Backend, dir, p string, entry core.Entry, tr upload.Transport) (int64, error) {
	size := entry.Size
	if size < 0 {
		info, err := b.Stat(p)
		if err != nil {
			return 0, backendErr(err, "failed to stat file", p)
		}
		size = info.Size
	}

	name := memberName(b.Root(), dir, p)
	s.SetTitle(entry.Name)
	s.NewTransfer(name)

	f, err := b.Open(p)
	if err != nil {
		return 0, backendErr(err, "failed to open file", p)
	}
	defer func() { _ = f.Close() }()

	var offset int64
	pull := func(buf []byte) (int, error) {
		if offset >= size {
			e.logger.Debug(s.Context(), "finished file upload", "name", name, "bytes", offset)
			return 0, nil
		}
		if err := s.Err(); err != nil {
			return 0, err
		}
		if rem := size - offset; int64(len(buf)) > rem {
			buf = buf[:rem]
		}

		n, err := readAt(f, buf, offset)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			e.logger.Warn(s.Context(), "failed to read for upload", "path", p, "offset", offset, "error", err)
			return n, backendErr(err, "failed to read file", p)
		}
		offset += int64(n)
		s.OnProgress(offset, size)
		metrics.RecordBytesUploaded(int64(n))
		return n, nil
	}

	if err := tr.Upload(s.Context(), name, size, pull); err != nil {
		if s.ShouldExit() {
			return offset, s.Err()
		}
		return offset, passOrWrap(err, "upload failed", p)
	}
	metrics.RecordFile("upload")
	return offset, nil
}

// readAt reads at off when f supports it and sequentially otherwise. Pulls
// arrive in order, so both see the same bytes.
func readAt(f core.File, buf []byte, off int64) (int, error) {
	if ra, ok := f.(io.ReaderAt); ok {
		return ra.ReadAt(buf, off)
	}
	return io.ReadFull(f, buf)
}
