package transfer

import (
	"time"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/metrics"
	"github.com/jmgilman/go/xfer/session"
	"github.com/jmgilman/go/xfer/snapshot"
	"github.com/jmgilman/go/xfer/stash"
)

// deleteMode selects which entry types a delete pass removes.
type deleteMode uint8

const (
	deleteFiles deleteMode = 1 << iota
	deleteDirs

	deleteAll = deleteFiles | deleteDirs
)

// DeleteFast deletes the selection immediately when it is a single file or
// a single empty directory. handled reports whether the selection qualified;
// when it did not, nothing was touched and Delete must be used.
func (e *Engine) DeleteFast(st *stash.Stash) (handled bool, err error) {
	if st.Len() != 1 {
		return false, nil
	}

	b := st.Backend()
	entry := st.Entries()[0]
	p := st.EntryPath(entry)

	if entry.IsDir() {
		empty, err := b.IsDirEmpty(p)
		if err != nil || !empty {
			return false, nil
		}
		if err := b.RemoveDir(p); err != nil {
			return true, backendErr(err, "failed to delete directory", p)
		}
		metrics.RecordDelete(core.TypeDir.String())
		return true, nil
	}

	if err := b.RemoveFile(p); err != nil {
		return true, backendErr(err, "failed to delete file", p)
	}
	metrics.RecordDelete(core.TypeFile.String())
	return true, nil
}

// Delete removes every selected entry. A single file or empty directory is
// deleted straight away. Otherwise every selected directory is captured with
// snapshot.CollectTree and the captured collections are deleted in reverse:
// for each collection, last captured first, its files and then its
// directories. The selected entries go last, files before directories. A
// directory is therefore only removed once everything captured after it is
// gone.
//
// Cancellation is checked before every delete and stops the operation
// immediately, leaving a partially deleted tree.
func (e *Engine) Delete(s *session.Session, st *stash.Stash) error {
	if handled, err := e.DeleteFast(st); handled {
		return err
	}

	return e.run(s, "delete", func(t *tally) error {
		b := st.Backend()
		collections, err := e.collectSelected(s, st, false)
		if err != nil {
			return err
		}
		return e.deleteWithSelected(s, b, st, collections, deleteAll, t)
	})
}

// collectSelected captures every selected directory in selection order.
func (e *Engine) collectSelected(s *session.Session, st *stash.Stash, includeSizes bool) (snapshot.Collections, error) {
	var out snapshot.Collections
	for _, entry := range st.Entries() {
		if err := checkpoint(s); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		cs, err := e.collectEntry(s, st, entry, includeSizes)
		if err != nil {
			return nil, err
		}
		out = append(out, cs...)
	}
	if len(out) > 0 {
		e.logger.Debug(s.Context(), "captured selection",
			"files", out.FileCount(), "dirs", out.DirCount(), "bytes", out.TotalSize())
	}
	return out, nil
}

// collectEntry captures one selected directory. Its collections carry the
// directory's own name as the root parent name.
func (e *Engine) collectEntry(s *session.Session, st *stash.Stash, entry core.Entry, includeSizes bool) (snapshot.Collections, error) {
	p := st.EntryPath(entry)
	s.NewTransfer("Scanning " + p)

	cs, err := snapshot.CollectTree(s.Context(), st.Backend(), p, entry.Name, includeSizes)
	if err != nil {
		if errors.IsCancelled(err) {
			return nil, s.Err()
		}
		return nil, err
	}
	for _, c := range cs {
		e.logger.Debug(s.Context(), "got collection",
			"path", c.Path, "parent_name", c.ParentName, "files", len(c.Files), "dirs", len(c.Dirs))
	}
	return cs, nil
}

// deleteCollections deletes the contents of collections in reverse capture
// order, restricted to the entry types in mode.
func (e *Engine) deleteCollections(s *session.Session, b core.Backend, collections snapshot.Collections, mode deleteMode, t *tally) error {
	for i := len(collections) - 1; i >= 0; i-- {
		c := collections[i]
		if err := e.deleteEntries(s, b, c.Path, c.Files, mode, true, t); err != nil {
			return err
		}
		if err := e.deleteEntries(s, b, c.Path, c.Dirs, mode, true, t); err != nil {
			return err
		}
	}
	return nil
}

// deleteWithSelected runs deleteCollections and then removes the selected
// entries themselves.
func (e *Engine) deleteWithSelected(s *session.Session, b core.Backend, st *stash.Stash, collections snapshot.Collections, mode deleteMode, t *tally) error {
	if err := e.deleteCollections(s, b, collections, mode, t); err != nil {
		return err
	}

	var files, dirs []core.Entry
	for _, entry := range st.Entries() {
		if entry.IsDir() {
			dirs = append(dirs, entry)
		} else {
			files = append(files, entry)
		}
	}
	if err := e.deleteEntries(s, b, st.Path(), files, mode, false, t); err != nil {
		return err
	}
	return e.deleteEntries(s, b, st.Path(), dirs, mode, false, t)
}

func (e *Engine) deleteEntries(s *session.Session, b core.Backend, dir string, entries []core.Entry, mode deleteMode, throttle bool, t *tally) error {
	for _, entry := range entries {
		if err := checkpoint(s); err != nil {
			return err
		}

		p := core.Join(dir, entry.Name)
		switch {
		case entry.IsDir() && mode&deleteDirs != 0:
			s.SetTitle(entry.Name)
			s.NewTransfer("Deleting " + p)
			e.logger.Debug(s.Context(), "deleting dir", "path", p)
			if err := b.RemoveDir(p); err != nil {
				return backendErr(err, "failed to delete directory", p)
			}
		case entry.IsFile() && mode&deleteFiles != 0:
			s.SetTitle(entry.Name)
			s.NewTransfer("Deleting " + p)
			e.logger.Debug(s.Context(), "deleting file", "path", p)
			if err := b.RemoveFile(p); err != nil {
				return backendErr(err, "failed to delete file", p)
			}
			t.files++
		default:
			continue
		}

		metrics.RecordDelete(entry.Type.String())
		if throttle && b.IsNative() && e.deleteThrottle > 0 {
			time.Sleep(e.deleteThrottle)
		}
	}
	return nil
}
