// Package browse implements the browse view: the owner of one backend, a
// current directory and its listing. Views feed selections into a shared
// stash.Stash and are the default source and destination of transfers.
package browse

import (
	"context"
	"strings"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/logging"
	"github.com/jmgilman/go/xfer/stash"
)

// Option configures a View.
type Option func(*View)

// WithSort sets the initial sort options.
func WithSort(opts SortOptions) Option {
	return func(v *View) {
		v.sort = opts
	}
}

// WithStash attaches a stash shared with other views. By default every view
// gets its own.
func WithStash(st *stash.Stash) Option {
	return func(v *View) {
		v.stash = st
	}
}

// WithLogger sets the view's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(v *View) {
		v.logger = logger
	}
}

// View is a directory listing on one backend. It is not safe for concurrent
// use.
type View struct {
	backend core.Backend
	path    string
	entries []core.Entry
	sort    SortOptions
	stash   *stash.Stash
	logger  *logging.Logger
}

// New creates a view of path on b. An empty path means the backend root.
// Nothing is listed until Scan is called.
func New(b core.Backend, path string, opts ...Option) *View {
	v := &View{
		backend: b,
		path:    path,
		sort:    DefaultSortOptions(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.path == "" {
		v.path = b.Root()
	}
	if v.stash == nil {
		v.stash = stash.New()
	}
	v.logger = logging.OrNop(v.logger)
	return v
}

// Backend returns the filesystem the view owns.
func (v *View) Backend() core.Backend { return v.backend }

// Path returns the current directory.
func (v *View) Path() string { return v.path }

// Stash returns the stash selections are marked into.
func (v *View) Stash() *stash.Stash { return v.stash }

// SortOptions returns the current sort options.
func (v *View) SortOptions() SortOptions { return v.sort }

// Entries returns the visible entries of the current directory in display
// order.
func (v *View) Entries() []core.Entry {
	return v.sort.filter(v.entries)
}

// Scan lists path and makes it the current directory. On failure the view
// keeps its previous directory and listing.
func (v *View) Scan(path string) error {
	entries, err := v.backend.List(path, core.ListAll)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeBackend, "failed to list directory",
			map[string]interface{}{"path": path})
	}

	v.sort.Sort(entries)
	v.path = path
	v.entries = entries
	v.logger.Debug(context.Background(), "scanned directory", "path", path, "entries", len(entries))
	return nil
}

// Rescan lists the current directory again.
func (v *View) Rescan() error {
	return v.Scan(v.path)
}

// SetSort changes the sort options and reorders the current listing.
func (v *View) SetSort(opts SortOptions) {
	v.sort = opts
	v.sort.Sort(v.entries)
}

// SetBackend switches the view to b and scans path, or b's root when path is
// empty. Switching to a backend with the same root and kind does nothing.
// Any other switch resets the stash, since its selection belongs to the old
// backend.
func (v *View) SetBackend(b core.Backend, path string) error {
	if core.SameBackend(v.backend, b) {
		return nil
	}

	v.backend = b
	v.path = path
	if v.path == "" {
		v.path = b.Root()
	}
	v.entries = nil
	v.stash.Reset()
	return v.Scan(v.path)
}

// NewPath returns name joined to the current directory.
func (v *View) NewPath(name string) string {
	return core.Join(v.path, name)
}

// resolve treats names starting with the backend root as full paths.
func (v *View) resolve(name string) string {
	if strings.HasPrefix(name, v.backend.Root()) {
		return name
	}
	return v.NewPath(name)
}

// Entry returns the listed entry called name.
func (v *View) Entry(name string) (core.Entry, error) {
	for _, e := range v.entries {
		if e.Name == name {
			return e, nil
		}
	}
	return core.Entry{}, errors.WithContextMap(
		errors.New(errors.CodeNotFound, "no such entry in listing"),
		map[string]interface{}{"name": name, "path": v.path})
}

// Rename renames the listed entry name to newName within the current
// directory and rescans.
func (v *View) Rename(name, newName string) error {
	if newName == "" || newName == name || strings.ContainsRune(newName, '/') {
		return errors.WithContext(errors.New(errors.CodeInvalidInput, "invalid new name"), "name", newName)
	}
	entry, err := v.Entry(name)
	if err != nil {
		return err
	}

	src, dst := v.NewPath(name), v.NewPath(newName)
	exists, err := v.backend.Exists(dst)
	if err != nil {
		return backendErr(err, "failed to check rename target", map[string]interface{}{"dst": dst})
	}
	if exists {
		return errors.WithContext(errors.New(errors.CodeAlreadyExists, "an entry with that name exists"), "dst", dst)
	}

	if entry.IsDir() {
		err = v.backend.RenameDir(src, dst)
	} else {
		err = v.backend.RenameFile(src, dst)
	}
	if err != nil {
		return backendErr(err, "failed to rename", map[string]interface{}{"src": src, "dst": dst})
	}
	return v.Rescan()
}

// CreateFile creates an empty file, creating missing parent directories,
// and rescans. name is relative to the current directory unless it starts
// with the backend root.
func (v *View) CreateFile(name string) error {
	p := v.resolve(name)
	if err := v.backend.MkdirAll(core.Dir(p)); err != nil {
		return backendErr(err, "failed to create parent directory", map[string]interface{}{"path": p})
	}
	f, err := v.backend.Create(p)
	if err != nil {
		return backendErr(err, "failed to create file", map[string]interface{}{"path": p})
	}
	if err := f.Close(); err != nil {
		return errors.WrapWithContext(err, errors.CodeIO, "failed to create file",
			map[string]interface{}{"path": p})
	}
	v.logger.Debug(context.Background(), "created file", "path", p)
	return v.Rescan()
}

// CreateFolder creates a directory and any missing parents, then rescans.
// name is resolved as in CreateFile.
func (v *View) CreateFolder(name string) error {
	p := v.resolve(name)
	if err := v.backend.MkdirAll(p); err != nil {
		return backendErr(err, "failed to create directory", map[string]interface{}{"path": p})
	}
	v.logger.Debug(context.Background(), "created directory", "path", p)
	return v.Rescan()
}

// Mark replaces the stash selection with the named entries of the current
// listing. Hidden entries can be marked even when they are not shown.
func (v *View) Mark(names []string, op stash.Op) error {
	entries := make([]core.Entry, 0, len(names))
	for _, name := range names {
		e, err := v.Entry(name)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	v.stash.Mark(v, entries, op)
	return nil
}

// MarkAll selects every visible entry.
func (v *View) MarkAll(op stash.Op) {
	v.stash.Mark(v, v.Entries(), op)
}

// backendErr wraps a failed backend request, keeping read-only refusals
// distinguishable.
func backendErr(err error, message string, ctx map[string]interface{}) error {
	code := errors.CodeBackend
	if errors.Is(err, core.ErrReadOnly) {
		code = errors.CodeReadOnly
	}
	return errors.WrapWithContext(err, code, message, ctx)
}
