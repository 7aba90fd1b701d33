package transfer

import (
	"fmt"
	"strings"

	"github.com/jmgilman/go/xfer/archive"
	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/metrics"
	"github.com/jmgilman/go/xfer/session"
	"github.com/jmgilman/go/xfer/stash"
)

// maxArchiveNameTries bounds the search for a free "Archive (n).zip".
const maxArchiveNameTries = 10000

// ArchiveName returns the path Zip writes to when no explicit output is
// given. A single entry keeps its name with the extension replaced by
// ".zip"; several entries get the first unused of "Archive.zip",
// "Archive (1).zip", ... in the stash directory.
func ArchiveName(st *stash.Stash) (string, error) {
	if st.Len() == 1 {
		name := st.Entries()[0].Name
		if i := strings.LastIndexByte(name, '.'); i > 0 {
			name = name[:i]
		}
		return core.Join(st.Path(), name+".zip"), nil
	}

	b := st.Backend()
	for i := 0; i < maxArchiveNameTries; i++ {
		name := "Archive.zip"
		if i > 0 {
			name = fmt.Sprintf("Archive (%d).zip", i)
		}
		p := core.Join(st.Path(), name)
		exists, err := b.Exists(p)
		if err != nil {
			return "", backendErr(err, "failed to check archive name", p)
		}
		if !exists {
			return p, nil
		}
	}
	return "", errors.WithContext(
		errors.New(errors.CodeNameConflict, "no unused archive name"), "dir", st.Path())
}

// Zip compresses the selection into a zip archive on the stash's backend and
// returns the archive path. An empty out derives the name with ArchiveName;
// otherwise ".zip" is appended when missing and a relative out is placed in
// the stash directory.
//
// Member names are relative to the stash directory. Selected directories are
// captured with snapshot.CollectTree and every file found is added.
func (e *Engine) Zip(s *session.Session, st *stash.Stash, out string) (string, error) {
	b := st.Backend()

	var err error
	if out == "" {
		if out, err = ArchiveName(st); err != nil {
			return "", err
		}
	} else {
		if !strings.HasSuffix(out, ".zip") {
			out += ".zip"
		}
		if _, ok := core.Rel(b.Root(), out); !ok {
			out = core.Join(st.Path(), out)
		}
	}

	for _, entry := range st.Entries() {
		if st.EntryPath(entry) == out {
			return "", errors.WithContext(
				errors.New(errors.CodeNameConflict, "archive would overwrite a selected entry"), "path", out)
		}
	}

	err = e.run(s, "zip", func(t *tally) error {
		collections, err := e.collectSelected(s, st, true)
		if err != nil {
			return err
		}

		w, err := archive.Create(b, out)
		if err != nil {
			return err
		}

		add := func(p string, entry core.Entry) error {
			if p == out {
				return nil
			}
			if err := checkpoint(s); err != nil {
				return err
			}
			n, err := e.zipAdd(s, w, b, st.Path(), p, entry)
			if err != nil {
				return err
			}
			t.files++
			t.bytes += n
			metrics.RecordFile("zip")
			return nil
		}

		for _, entry := range st.Entries() {
			s.SetTitle(entry.Name)
			if entry.IsFile() {
				if err := add(st.EntryPath(entry), entry); err != nil {
					_ = w.Close()
					return err
				}
			}
		}
		for _, c := range collections {
			for _, f := range c.Files {
				if err := add(core.Join(c.Path, f.Name), f); err != nil {
					_ = w.Close()
					return err
				}
			}
		}

		return w.Close()
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// memberName turns p into an archive member name relative to dir. Any root
// prefix and leading separators are stripped.
func memberName(root, dir, p string) string {
	name, ok := core.Rel(dir, p)
	if !ok {
		name, _ = core.Rel(root, p)
	}
	return strings.TrimLeft(name, "/")
}

func (e *Engine) zipAdd(s *session.Session, w *archive.Writer, b core.Backend, dir, p string, entry core.Entry) (int64, error) {
	name := memberName(b.Root(), dir, p)
	s.NewTransfer(name)

	size := entry.Size
	modTime := entry.ModTime
	if size < 0 || modTime.IsZero() {
		info, err := b.Stat(p)
		if err != nil {
			return 0, backendErr(err, "failed to stat file", p)
		}
		size, modTime = info.Size, info.ModTime
	}

	in, err := b.Open(p)
	if err != nil {
		return 0, backendErr(err, "failed to open file", p)
	}
	defer func() { _ = in.Close() }()

	ew, err := w.NewEntry(name, modTime)
	if err != nil {
		return 0, err
	}

	return e.stream(s, ew, in, size, e.modeFor(b, b, size))
}

// Unzip extracts every selected archive into dstDir on dst. A nil dst means
// the stash's backend and an empty dstDir the stash directory. Members are
// written to dstDir joined with their relative name and parent directories
// are created on first use. Archives are validated against the engine's
// extraction limits before anything is written.
func (e *Engine) Unzip(s *session.Session, st *stash.Stash, dst core.Backend, dstDir string) error {
	src := st.Backend()
	if dst == nil {
		dst = src
	}
	if dstDir == "" {
		dstDir = st.Path()
	}

	return e.run(s, "unzip", func(t *tally) error {
		for _, entry := range st.Entries() {
			if err := checkpoint(s); err != nil {
				return err
			}
			if !entry.IsFile() {
				return errors.WithContext(
					errors.New(errors.CodeInvalidInput, "only files can be extracted"), "name", entry.Name)
			}
			s.SetTitle(entry.Name)
			if err := e.unzipOne(s, src, st.EntryPath(entry), dst, dstDir, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Engine) unzipOne(s *session.Session, src core.Backend, zipPath string, dst core.Backend, dstDir string, t *tally) error {
	r, err := archive.Open(src, zipPath)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	entries := r.Entries()
	if err := archive.ForOptions(e.extract).Validate(entries); err != nil {
		return err
	}

	created := map[string]bool{}
	ensureDir := func(dir string) error {
		if created[dir] {
			return nil
		}
		if err := dst.MkdirAll(dir); err != nil {
			return backendErr(err, "failed to create directory", dir)
		}
		created[dir] = true
		return nil
	}

	for _, m := range entries {
		if err := checkpoint(s); err != nil {
			return err
		}

		target := core.Join(dstDir, m.Name)
		if m.IsDir {
			if err := ensureDir(target); err != nil {
				return err
			}
			continue
		}
		if err := ensureDir(core.Dir(target)); err != nil {
			return err
		}

		s.NewTransfer(m.Name)
		n, err := e.extractMember(s, r, m, src, dst, target)
		if err != nil {
			return err
		}
		t.files++
		t.bytes += n
		metrics.RecordFile("unzip")
	}
	return nil
}

func (e *Engine) extractMember(s *session.Session, r *archive.Reader, m archive.Entry, src, dst core.Backend, target string) (int64, error) {
	rc, err := r.OpenEntry(m)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	out, err := dst.Create(target)
	if err != nil {
		return 0, backendErr(err, "failed to create file", target)
	}

	n, err := e.stream(s, out, rc, m.Size, e.modeFor(src, dst, m.Size))
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errors.WrapWithContext(cerr, errors.CodeIO, "failed to finish file", map[string]interface{}{"path": target})
	}
	if err != nil {
		return n, err
	}

	if ts, ok := dst.(core.Timestamper); ok && !m.ModTime.IsZero() {
		stamp := core.Timestamp{Created: m.ModTime, Modified: m.ModTime, Accessed: m.ModTime}
		if err := ts.SetTimestamp(target, stamp); err != nil && !errors.Is(err, core.ErrUnsupported) {
			e.logger.Warn(s.Context(), "failed to set timestamp", "path", target, "error", err)
		}
	}
	return n, nil
}
