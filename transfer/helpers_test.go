package transfer

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/xfer/fs/billy"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/fs/fstest"
	"github.com/jmgilman/go/xfer/session"
	"github.com/jmgilman/go/xfer/stash"
)

func newEngine(opts ...Option) *Engine {
	return New(append([]Option{WithDeleteThrottle(0)}, opts...)...)
}

func newSession() *session.Session {
	return session.New(context.Background(), "test")
}

type view struct {
	b    core.Backend
	path string
}

func (v view) Backend() core.Backend { return v.b }
func (v view) Path() string          { return v.path }

// mark selects names in dir on b.
func mark(t *testing.T, b core.Backend, dir string, op stash.Op, names ...string) *stash.Stash {
	t.Helper()
	entries := make([]core.Entry, 0, len(names))
	for _, name := range names {
		e, err := b.Stat(core.Join(dir, name))
		require.NoError(t, err, name)
		entries = append(entries, e)
	}
	st := stash.New()
	st.Mark(view{b: b, path: dir}, entries, op)
	return st
}

// writeTree creates files (and directories for keys ending in "/") below
// dir, creating parents as needed.
func writeTree(t *testing.T, b core.Backend, dir string, tree map[string]string) {
	t.Helper()
	for name, content := range tree {
		p := core.Join(dir, name)
		if strings.HasSuffix(name, "/") {
			require.NoError(t, b.MkdirAll(p))
			continue
		}
		require.NoError(t, b.MkdirAll(core.Dir(p)))
		fstest.WriteFile(t, b, p, []byte(content))
	}
}

func exists(t *testing.T, b core.Backend, p string) bool {
	t.Helper()
	ok, err := b.Exists(p)
	require.NoError(t, err)
	return ok
}

func memFS(root string, opts ...billy.Option) *billy.FS {
	return billy.NewMemory(append([]billy.Option{billy.WithRoot(root)}, opts...)...)
}

// recorder wraps a backend and records every mutating call. It also checks
// the ordering rules the engine promises: no directory is removed while it
// still has children and no file is created before its parent exists.
type recorder struct {
	core.Backend

	mu              sync.Mutex
	ops             []string
	nonEmptyRemoved []string
	orphanCreates   []string
	onClose         func(path string)
}

func record(b core.Backend) *recorder {
	return &recorder{Backend: b}
}

func (r *recorder) add(op, p string) {
	r.mu.Lock()
	r.ops = append(r.ops, op+" "+p)
	r.mu.Unlock()
}

func (r *recorder) Ops(prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, op := range r.ops {
		if strings.HasPrefix(op, prefix+" ") {
			out = append(out, strings.TrimPrefix(op, prefix+" "))
		}
	}
	return out
}

func (r *recorder) index(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.ops {
		if o == op {
			return i
		}
	}
	return -1
}

func (r *recorder) Open(p string) (core.File, error) {
	r.add("open", p)
	return r.Backend.Open(p)
}

func (r *recorder) Create(p string) (core.File, error) {
	if ok, _ := r.Backend.Exists(core.Dir(p)); !ok {
		r.mu.Lock()
		r.orphanCreates = append(r.orphanCreates, p)
		r.mu.Unlock()
	}
	r.add("create", p)
	f, err := r.Backend.Create(p)
	if err != nil {
		return nil, err
	}
	return &hookFile{File: f, onClose: func() {
		r.add("close", p)
		if r.onClose != nil {
			r.onClose(p)
		}
	}}, nil
}

func (r *recorder) Mkdir(p string) error {
	r.add("mkdir", p)
	return r.Backend.Mkdir(p)
}

func (r *recorder) MkdirAll(p string) error {
	r.add("mkdirall", p)
	return r.Backend.MkdirAll(p)
}

func (r *recorder) RemoveFile(p string) error {
	r.add("rm", p)
	return r.Backend.RemoveFile(p)
}

func (r *recorder) RemoveDir(p string) error {
	if empty, err := r.Backend.IsDirEmpty(p); err == nil && !empty {
		r.mu.Lock()
		r.nonEmptyRemoved = append(r.nonEmptyRemoved, p)
		r.mu.Unlock()
	}
	r.add("rmdir", p)
	return r.Backend.RemoveDir(p)
}

func (r *recorder) RenameFile(src, dst string) error {
	r.add("rename", src+" -> "+dst)
	return r.Backend.RenameFile(src, dst)
}

func (r *recorder) RenameDir(src, dst string) error {
	r.add("rename", src+" -> "+dst)
	return r.Backend.RenameDir(src, dst)
}

type hookFile struct {
	core.File
	onClose func()
}

func (f *hookFile) Close() error {
	err := f.File.Close()
	f.onClose()
	return err
}

// listTree returns every file below dir with its contents, keyed by path
// relative to dir.
func listTree(t *testing.T, b core.Backend, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	var walk func(string)
	walk = func(d string) {
		entries, err := b.List(d, core.ListAll)
		require.NoError(t, err)
		for _, e := range entries {
			p := core.Join(d, e.Name)
			if e.IsDir() {
				walk(p)
				continue
			}
			rel, _ := core.Rel(dir, p)
			out[rel] = string(fstest.ReadAll(t, b, p))
		}
	}
	walk(dir)
	return out
}
