package transfer

import (
	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/metrics"
	"github.com/jmgilman/go/xfer/session"
	"github.com/jmgilman/go/xfer/stash"
)

// Paste copies or moves the selection into dstPath on dst, depending on the
// stash's Cut or Copy intent.
//
// A Cut on the same backend is a rename of each selected entry and moves no
// data. Everything else captures the selected directories first, creates
// destination directories in capture order so that a parent always exists
// before its children, then copies every file. A Cut deletes each source
// file as soon as its copy succeeds and removes the emptied source
// directories in reverse capture order once all files are across.
//
// When dst is not native storage and the source records raw timestamps,
// they are copied onto each pasted file. Failing to do so is only logged.
func (e *Engine) Paste(s *session.Session, st *stash.Stash, dst core.Backend, dstPath string) error {
	op := st.Op()
	if op != stash.Cut && op != stash.Copy {
		return errors.Newf(errors.CodeInvalidInput, "cannot paste a %s selection", op)
	}
	if st.Empty() {
		return nil
	}

	src := st.Backend()
	same := core.SameBackend(src, dst)

	if same {
		if st.Path() == dstPath {
			if op == stash.Cut {
				return nil
			}
			return errors.WithContext(
				errors.New(errors.CodeNameConflict, "source and destination directory are the same"),
				"path", dstPath)
		}
		for _, entry := range st.Entries() {
			if entry.IsDir() && core.Within(st.EntryPath(entry), dstPath) {
				return errors.WithContextMap(
					errors.New(errors.CodeInvalidInput, "cannot paste a directory into itself"),
					map[string]interface{}{"src": st.EntryPath(entry), "dst": dstPath})
			}
		}
	}

	if same && op == stash.Cut {
		if st.Len() == 1 {
			entry := st.Entries()[0]
			return e.rename(src, st.EntryPath(entry), core.Join(dstPath, entry.Name), entry)
		}
		return e.run(s, "move", func(t *tally) error {
			for _, entry := range st.Entries() {
				if err := checkpoint(s); err != nil {
					return err
				}
				srcPath := st.EntryPath(entry)
				s.SetTitle(entry.Name)
				s.NewTransfer("Pasting " + srcPath)
				if err := e.rename(src, srcPath, core.Join(dstPath, entry.Name), entry); err != nil {
					return err
				}
				t.files++
			}
			return nil
		})
	}

	name := "copy"
	if op == stash.Cut {
		name = "move"
	}
	return e.run(s, name, func(t *tally) error {
		return e.paste(s, st, dst, dstPath, same, t)
	})
}

func (e *Engine) rename(b core.Backend, srcPath, dstPath string, entry core.Entry) error {
	var err error
	if entry.IsDir() {
		err = b.RenameDir(srcPath, dstPath)
	} else {
		err = b.RenameFile(srcPath, dstPath)
	}
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeBackend, "failed to rename",
			map[string]interface{}{"src": srcPath, "dst": dstPath})
	}
	metrics.RecordFile("move")
	return nil
}

func (e *Engine) paste(s *session.Session, st *stash.Stash, dst core.Backend, dstPath string, same bool, t *tally) error {
	src := st.Backend()
	cut := st.Op() == stash.Cut

	collections, err := e.collectSelected(s, st, false)
	if err != nil {
		return err
	}

	pasteFile := func(name, srcPath, dstFile string) error {
		if err := checkpoint(s); err != nil {
			return err
		}
		s.SetTitle(name)
		s.NewTransfer("Copying " + srcPath)

		n, err := e.copyFile(s, src, dst, srcPath, dstFile, same)
		if err != nil {
			return err
		}
		t.files++
		t.bytes += n
		metrics.RecordFile(st.Op().String())

		e.propagateTimestamp(s, src, dst, srcPath, dstFile)

		if cut {
			if err := src.RemoveFile(srcPath); err != nil {
				return backendErr(err, "failed to delete source file", srcPath)
			}
		}
		return nil
	}

	makeDir := func(name, dir string) error {
		if err := checkpoint(s); err != nil {
			return err
		}
		s.SetTitle(name)
		s.NewTransfer("Creating " + dir)
		if err := dst.Mkdir(dir); err != nil && !errors.Is(err, core.ErrExist) {
			return backendErr(err, "failed to create directory", dir)
		}
		return nil
	}

	for _, entry := range st.Entries() {
		srcPath := st.EntryPath(entry)
		dstEntry := core.Join(dstPath, entry.Name)
		if entry.IsDir() {
			if err := makeDir(entry.Name, dstEntry); err != nil {
				return err
			}
			continue
		}
		if err := pasteFile(entry.Name, srcPath, dstEntry); err != nil {
			return err
		}
	}

	for _, c := range collections {
		base := core.Join(dstPath, c.ParentName)
		for _, d := range c.Dirs {
			if err := makeDir(d.Name, core.Join(base, d.Name)); err != nil {
				return err
			}
		}
		for _, f := range c.Files {
			if err := pasteFile(f.Name, core.Join(c.Path, f.Name), core.Join(base, f.Name)); err != nil {
				return err
			}
		}
	}

	if cut {
		return e.deleteWithSelected(s, src, st, collections, deleteDirs, t)
	}
	return nil
}

// propagateTimestamp copies the source's raw timestamp onto dstPath when the
// destination is not native storage.
func (e *Engine) propagateTimestamp(s *session.Session, src, dst core.Backend, srcPath, dstPath string) {
	if dst.IsNative() {
		return
	}
	from, ok := src.(core.Timestamper)
	if !ok {
		return
	}
	to, ok := dst.(core.Timestamper)
	if !ok {
		return
	}

	stamp, err := from.Timestamp(srcPath)
	if err != nil {
		return
	}
	if err := to.SetTimestamp(dstPath, stamp); err != nil {
		e.logger.Warn(s.Context(), "failed to set timestamp", "path", dstPath, "error", err)
	}
}
