package transfer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/billy"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/fs/fstest"
	"github.com/jmgilman/go/xfer/session"
	"github.com/jmgilman/go/xfer/stash"
)

var pasteSource = map[string]string{
	"dir1/a.txt": "alpha",
	"dir1/b.txt": "bravo",
	"c.txt":      "charlie",
}

func pasteBackends(t *testing.T) (src, dst *billy.FS) {
	t.Helper()
	src = memFS("src:/")
	dst = memFS("dst:/")
	writeTree(t, src, "src:/", pasteSource)
	require.NoError(t, dst.Mkdir("dst:/dest"))
	return src, dst
}

func TestPaste_Copy(t *testing.T) {
	src, dst := pasteBackends(t)
	st := mark(t, src, "src:/", stash.Copy, "dir1", "c.txt")

	require.NoError(t, newEngine().Paste(newSession(), st, dst, "dst:/dest"))

	assert.Equal(t, map[string]string{
		"dir1/a.txt": "alpha",
		"dir1/b.txt": "bravo",
		"c.txt":      "charlie",
	}, listTree(t, dst, "dst:/dest"))
	assert.Equal(t, pasteSource, listTree(t, src, "src:/"))
}

func TestPaste_CutAcrossBackends(t *testing.T) {
	src, dst := pasteBackends(t)
	st := mark(t, src, "src:/", stash.Cut, "dir1", "c.txt")

	require.NoError(t, newEngine().Paste(newSession(), st, dst, "dst:/dest"))

	assert.Equal(t, pasteSource, listTree(t, dst, "dst:/dest"))
	assert.False(t, exists(t, src, "src:/dir1"))
	assert.False(t, exists(t, src, "src:/c.txt"))
}

func TestPaste_CutSameBackend(t *testing.T) {
	b := memFS("mem:/")
	writeTree(t, b, "mem:/", pasteSource)
	require.NoError(t, b.Mkdir("mem:/dest"))
	rec := record(b)
	st := mark(t, rec, "mem:/", stash.Cut, "dir1", "c.txt")

	require.NoError(t, newEngine().Paste(newSession(), st, rec, "mem:/dest"))

	assert.Equal(t, pasteSource, listTree(t, b, "mem:/dest"))
	assert.False(t, exists(t, b, "mem:/dir1"))
	assert.False(t, exists(t, b, "mem:/c.txt"))
	assert.Len(t, rec.Ops("rename"), 2)
	assert.Empty(t, rec.Ops("create"))
}

func TestPaste_SingleCutIsRename(t *testing.T) {
	b := memFS("mem:/")
	fstest.Populate(t, b)
	rec := record(b)
	st := mark(t, rec, "mem:/", stash.Cut, "hello.txt")

	progress := 0
	s := session.New(context.Background(), "move", session.WithProgress(func(done, total int64) { progress++ }))
	require.NoError(t, newEngine().Paste(s, st, rec, "mem:/dir"))

	assert.Equal(t, []string{"mem:/hello.txt -> mem:/dir/hello.txt"}, rec.Ops("rename"))
	assert.Empty(t, rec.Ops("open"))
	assert.Empty(t, rec.Ops("create"))
	assert.Zero(t, progress)
	assert.Equal(t, "hello, world", string(fstest.ReadAll(t, b, "mem:/dir/hello.txt")))
}

func TestPaste_ParentsBeforeChildren(t *testing.T) {
	src := memFS("src:/")
	writeTree(t, src, "src:/", map[string]string{
		"top/1.txt":       "1",
		"top/a/2.txt":     "2",
		"top/a/b/3.txt":   "3",
		"top/a/b/c/4.txt": "4",
		"top/z/5.txt":     "5",
		"top/a/b/empty/":  "",
		"loose.txt":       "loose",
	})
	rec := record(memFS("dst:/"))
	require.NoError(t, rec.Backend.Mkdir("dst:/out"))

	st := mark(t, src, "src:/", stash.Copy, "top", "loose.txt")
	require.NoError(t, newEngine().Paste(newSession(), st, rec, "dst:/out"))

	assert.Empty(t, rec.orphanCreates)
	assert.Len(t, listTree(t, rec, "dst:/out"), 6)
	assert.True(t, exists(t, rec, "dst:/out/top/a/b/empty"))
	assert.Less(t, rec.index("mkdir dst:/out/top/a"), rec.index("mkdir dst:/out/top/a/b"))
	assert.Less(t, rec.index("mkdir dst:/out/top/a/b"), rec.index("create dst:/out/top/a/b/3.txt"))
}

func TestPaste_CancelMidway(t *testing.T) {
	src := memFS("src:/")
	writeTree(t, src, "src:/", map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})
	rec := record(memFS("dst:/"))
	require.NoError(t, rec.Backend.Mkdir("dst:/dest"))

	s := newSession()
	rec.onClose = func(p string) {
		if p == "dst:/dest/a.txt" {
			s.Cancel()
		}
	}

	st := mark(t, src, "src:/", stash.Cut, "a.txt", "b.txt", "c.txt")
	err := newEngine().Paste(s, st, rec, "dst:/dest")

	require.Error(t, err)
	assert.True(t, errors.IsCancelled(err))
	assert.True(t, exists(t, rec, "dst:/dest/a.txt"))
	assert.False(t, exists(t, rec, "dst:/dest/b.txt"))
	assert.False(t, exists(t, rec, "dst:/dest/c.txt"))
	assert.True(t, exists(t, src, "src:/b.txt"))
	assert.True(t, exists(t, src, "src:/c.txt"))
}

func TestPaste_InvalidSelections(t *testing.T) {
	b := memFS("mem:/")
	fstest.Populate(t, b)
	e := newEngine()

	t.Run("into own subtree", func(t *testing.T) {
		st := mark(t, b, "mem:/", stash.Copy, "dir")
		err := e.Paste(newSession(), st, b, "mem:/dir/sub")
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	})

	t.Run("into itself", func(t *testing.T) {
		st := mark(t, b, "mem:/", stash.Cut, "dir")
		err := e.Paste(newSession(), st, b, "mem:/dir")
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	})

	t.Run("copy into same directory", func(t *testing.T) {
		st := mark(t, b, "mem:/", stash.Copy, "hello.txt")
		err := e.Paste(newSession(), st, b, "mem:/")
		assert.Equal(t, errors.CodeNameConflict, errors.GetCode(err))
	})

	t.Run("delete selection", func(t *testing.T) {
		st := mark(t, b, "mem:/", stash.Delete, "hello.txt")
		err := e.Paste(newSession(), st, b, "mem:/empty")
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	})

	t.Run("cut into same directory is a no-op", func(t *testing.T) {
		st := mark(t, b, "mem:/", stash.Cut, "hello.txt")
		require.NoError(t, e.Paste(newSession(), st, b, "mem:/"))
		assert.True(t, exists(t, b, "mem:/hello.txt"))
	})

	t.Run("empty selection", func(t *testing.T) {
		st := stash.New()
		st.Mark(view{b: b, path: "mem:/"}, nil, stash.Copy)
		assert.NoError(t, e.Paste(newSession(), st, b, "mem:/empty"))
	})
}

// stamped gives a backend fixed raw timestamps and records the ones set.
type stamped struct {
	core.Backend

	stamp core.Timestamp
	mu    sync.Mutex
	set   map[string]core.Timestamp
}

func (b *stamped) Timestamp(string) (core.Timestamp, error) { return b.stamp, nil }

func (b *stamped) SetTimestamp(p string, stamp core.Timestamp) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.set == nil {
		b.set = map[string]core.Timestamp{}
	}
	b.set[p] = stamp
	return nil
}

func TestPaste_PropagatesTimestamps(t *testing.T) {
	stamp := core.Timestamp{
		Created:  time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		Modified: time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC),
		Accessed: time.Date(2022, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	tests := []struct {
		name   string
		native bool
		want   map[string]core.Timestamp
	}{
		{
			name:   "non-native destination",
			native: false,
			want: map[string]core.Timestamp{
				"dst:/dest/c.txt":      stamp,
				"dst:/dest/dir1/a.txt": stamp,
				"dst:/dest/dir1/b.txt": stamp,
			},
		},
		{name: "native destination", native: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcFS := memFS("src:/")
			writeTree(t, srcFS, "src:/", pasteSource)
			dstFS := memFS("dst:/", billy.WithNative(tt.native))
			require.NoError(t, dstFS.Mkdir("dst:/dest"))

			src := &stamped{Backend: srcFS, stamp: stamp}
			dst := &stamped{Backend: dstFS}

			st := mark(t, src, "src:/", stash.Copy, "dir1", "c.txt")
			require.NoError(t, newEngine().Paste(newSession(), st, dst, "dst:/dest"))
			assert.Equal(t, tt.want, dst.set)
		})
	}
}
