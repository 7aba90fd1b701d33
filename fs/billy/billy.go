package billy

import (
	"io/fs"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/jmgilman/go/xfer/fs/core"
)

const (
	// DefaultLocalRoot is the root reported by NewLocal unless overridden.
	DefaultLocalRoot = "sdmc:/"
	// DefaultMemoryRoot is the root reported by NewMemory unless overridden.
	DefaultMemoryRoot = "mem:/"

	dirPerm = 0o755
)

// FS adapts a billy.Filesystem to core.Backend.
type FS struct {
	bfs    billy.Filesystem
	root   string
	kind   core.Kind
	native bool
}

// Option configures an FS.
type Option func(*FS)

// WithRoot sets the path prefix the backend answers to.
func WithRoot(root string) Option {
	return func(f *FS) {
		f.root = root
	}
}

// WithKind sets the reported storage kind. KindRemovable also marks the
// backend as non-native.
func WithKind(kind core.Kind) Option {
	return func(f *FS) {
		f.kind = kind
		if kind == core.KindRemovable {
			f.native = false
		}
	}
}

// WithNative overrides whether the backend is treated as native storage.
func WithNative(native bool) Option {
	return func(f *FS) {
		f.native = native
	}
}

// NewLocal creates a backend over the host directory dir.
func NewLocal(dir string, opts ...Option) *FS {
	return newFS(osfs.New(dir), DefaultLocalRoot, core.KindNative, opts)
}

// NewMemory creates an empty in-memory backend.
func NewMemory(opts ...Option) *FS {
	bfs := memfs.New()
	_ = bfs.MkdirAll("/", dirPerm)
	return newFS(bfs, DefaultMemoryRoot, core.KindMemory, opts)
}

func newFS(bfs billy.Filesystem, root string, kind core.Kind, opts []Option) *FS {
	f := &FS{bfs: bfs, root: root, kind: kind, native: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Root returns the backend's path prefix.
func (f *FS) Root() string { return f.root }

// Kind returns the configured storage kind.
func (f *FS) Kind() core.Kind { return f.kind }

// IsNative reports whether this backend is native storage.
func (f *FS) IsNative() bool { return f.native }

// resolve maps a root-prefixed path onto a billy path.
func (f *FS) resolve(op, p string) (string, error) {
	rel, ok := core.Rel(f.root, p)
	if !ok {
		return "", core.PathError(op, p, core.ErrOutsideRoot)
	}
	return "/" + rel, nil
}

// List returns the entries of the directory at p sorted by name.
func (f *FS) List(p string, mode core.ListMode) ([]core.Entry, error) {
	bp, err := f.resolve("list", p)
	if err != nil {
		return nil, err
	}

	infos, err := f.bfs.ReadDir(bp)
	if err != nil {
		return nil, err
	}

	entries := make([]core.Entry, 0, len(infos))
	for _, info := range infos {
		e := toEntry(info)
		switch {
		case e.IsDir() && !mode.Has(core.ListDirs):
			continue
		case e.IsFile() && !mode.Has(core.ListFiles):
			continue
		}
		if e.IsFile() && mode.Has(core.ListNoFileSize) {
			e.Size = core.SizeUnknown
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Open opens the file at p for reading.
func (f *FS) Open(p string) (core.File, error) {
	bp, err := f.resolve("open", p)
	if err != nil {
		return nil, err
	}
	bf, err := f.bfs.Open(bp)
	if err != nil {
		return nil, err
	}
	return &File{file: bf, name: p}, nil
}

// Create creates or truncates the file at p. The parent directory must
// already exist.
func (f *FS) Create(p string) (core.File, error) {
	bp, err := f.resolve("create", p)
	if err != nil {
		return nil, err
	}
	if err := f.requireDir("create", p, parentOf(bp)); err != nil {
		return nil, err
	}
	bf, err := f.bfs.Create(bp)
	if err != nil {
		return nil, err
	}
	return &File{file: bf, name: p}, nil
}

// Stat returns the entry describing p.
func (f *FS) Stat(p string) (core.Entry, error) {
	bp, err := f.resolve("stat", p)
	if err != nil {
		return core.Entry{}, err
	}
	info, err := f.bfs.Stat(bp)
	if err != nil {
		return core.Entry{}, err
	}
	e := toEntry(info)
	e.Name = core.Base(p)
	return e, nil
}

// Mkdir creates a single directory. It fails if p exists or its parent does
// not.
func (f *FS) Mkdir(p string) error {
	bp, err := f.resolve("mkdir", p)
	if err != nil {
		return err
	}
	if _, err := f.bfs.Stat(bp); err == nil {
		return core.PathError("mkdir", p, core.ErrExist)
	}
	if err := f.requireDir("mkdir", p, parentOf(bp)); err != nil {
		return err
	}
	return f.bfs.MkdirAll(bp, dirPerm)
}

// MkdirAll creates p and any missing parents.
func (f *FS) MkdirAll(p string) error {
	bp, err := f.resolve("mkdir", p)
	if err != nil {
		return err
	}
	return f.bfs.MkdirAll(bp, dirPerm)
}

// RemoveFile deletes the file at p.
func (f *FS) RemoveFile(p string) error {
	bp, err := f.resolve("remove", p)
	if err != nil {
		return err
	}
	info, err := f.bfs.Stat(bp)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return core.PathError("remove", p, core.ErrInvalid)
	}
	return f.bfs.Remove(bp)
}

// RemoveDir deletes the empty directory at p.
func (f *FS) RemoveDir(p string) error {
	bp, err := f.resolve("rmdir", p)
	if err != nil {
		return err
	}
	info, err := f.bfs.Stat(bp)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return core.PathError("rmdir", p, core.ErrInvalid)
	}
	children, err := f.bfs.ReadDir(bp)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return core.PathError("rmdir", p, core.ErrNotEmpty)
	}
	return f.bfs.Remove(bp)
}

// RenameFile moves a file.
func (f *FS) RenameFile(src, dst string) error {
	return f.rename(src, dst)
}

// RenameDir moves a directory and everything below it.
func (f *FS) RenameDir(src, dst string) error {
	if core.Within(src, dst) {
		return core.PathError("rename", dst, core.ErrInvalid)
	}
	return f.rename(src, dst)
}

func (f *FS) rename(src, dst string) error {
	bsrc, err := f.resolve("rename", src)
	if err != nil {
		return err
	}
	bdst, err := f.resolve("rename", dst)
	if err != nil {
		return err
	}
	if _, err := f.bfs.Stat(bsrc); err != nil {
		return err
	}
	return f.bfs.Rename(bsrc, bdst)
}

// Exists reports whether p exists.
func (f *FS) Exists(p string) (bool, error) {
	bp, err := f.resolve("stat", p)
	if err != nil {
		return false, err
	}
	_, err = f.bfs.Stat(bp)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsDirEmpty reports whether the directory at p has no children.
func (f *FS) IsDirEmpty(p string) (bool, error) {
	bp, err := f.resolve("readdir", p)
	if err != nil {
		return false, err
	}
	children, err := f.bfs.ReadDir(bp)
	if err != nil {
		return false, err
	}
	return len(children) == 0, nil
}

// Timestamp returns the modification time of p. billy exposes no creation
// or access time, so those fields repeat the modification time.
func (f *FS) Timestamp(p string) (core.Timestamp, error) {
	bp, err := f.resolve("stat", p)
	if err != nil {
		return core.Timestamp{}, err
	}
	info, err := f.bfs.Stat(bp)
	if err != nil {
		return core.Timestamp{}, err
	}
	mt := info.ModTime()
	return core.Timestamp{Created: mt, Modified: mt, Accessed: mt}, nil
}

// SetTimestamp applies the modification and access times of stamp.
func (f *FS) SetTimestamp(p string, stamp core.Timestamp) error {
	bp, err := f.resolve("chtimes", p)
	if err != nil {
		return err
	}
	ch, ok := f.bfs.(billy.Change)
	if !ok {
		return core.PathError("chtimes", p, core.ErrUnsupported)
	}
	atime := stamp.Accessed
	if atime.IsZero() {
		atime = stamp.Modified
	}
	if stamp.Modified.IsZero() {
		return nil
	}
	return ch.Chtimes(bp, atime, stamp.Modified)
}

func (f *FS) requireDir(op, p, bdir string) error {
	info, err := f.bfs.Stat(bdir)
	if err != nil {
		if os.IsNotExist(err) {
			return core.PathError(op, p, core.ErrNotExist)
		}
		return err
	}
	if !info.IsDir() {
		return core.PathError(op, p, core.ErrInvalid)
	}
	return nil
}

func parentOf(bp string) string {
	for i := len(bp) - 1; i > 0; i-- {
		if bp[i] == '/' {
			return bp[:i]
		}
	}
	return "/"
}

func toEntry(info fs.FileInfo) core.Entry {
	if info.IsDir() {
		return core.Entry{Name: info.Name(), Type: core.TypeDir, Size: core.SizeUnknown, ModTime: info.ModTime()}
	}
	return core.Entry{Name: info.Name(), Type: core.TypeFile, Size: info.Size(), ModTime: info.ModTime()}
}

// Compile-time interface checks.
var (
	_ core.Backend     = (*FS)(nil)
	_ core.Timestamper = (*FS)(nil)
)
