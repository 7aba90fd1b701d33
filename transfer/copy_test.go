package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/billy"
	"github.com/jmgilman/go/xfer/fs/core"
	"github.com/jmgilman/go/xfer/fs/fstest"
	"github.com/jmgilman/go/xfer/session"
)

type progressLog struct {
	mu    sync.Mutex
	calls [][2]int64
}

func (p *progressLog) record(done, total int64) {
	p.mu.Lock()
	p.calls = append(p.calls, [2]int64{done, total})
	p.mu.Unlock()
}

func TestCopy_ReportsProgressPerChunk(t *testing.T) {
	src := memFS("src:/")
	dst := memFS("dst:/")
	fstest.WriteFile(t, src, "src:/f", []byte("0123456789"))

	var p progressLog
	s := session.New(context.Background(), "copy", session.WithProgress(p.record))
	require.NoError(t, newEngine(WithChunkSize(4)).Copy(s, src, dst, "src:/f", "dst:/f", false))

	assert.Equal(t, "0123456789", string(fstest.ReadAll(t, dst, "dst:/f")))
	assert.Equal(t, [][2]int64{{4, 10}, {8, 10}, {10, 10}}, p.calls)
}

func TestCopy_MissingSource(t *testing.T) {
	b := memFS("mem:/")
	err := newEngine().Copy(newSession(), b, b, "mem:/nope", "mem:/out", true)
	require.Error(t, err)
	assert.Equal(t, xerrors.CodeBackend, xerrors.GetCode(err))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCopy_MissingDestinationParent(t *testing.T) {
	b := memFS("mem:/")
	fstest.Populate(t, b)
	err := newEngine().Copy(newSession(), b, b, "mem:/hello.txt", "mem:/nope/out", true)
	require.Error(t, err)
	assert.Equal(t, xerrors.CodeBackend, xerrors.GetCode(err))
}

func TestCopy_Cancelled(t *testing.T) {
	b := memFS("mem:/")
	fstest.Populate(t, b)
	s := newSession()
	s.Cancel()

	err := newEngine().Copy(s, b, b, "mem:/hello.txt", "mem:/copy.txt", true)
	require.Error(t, err)
	assert.True(t, xerrors.IsCancelled(err))
}

// cloning counts clones and optionally refuses them.
type cloning struct {
	core.Backend
	raw    core.Backend
	refuse bool
	clones int
}

func (c *cloning) Clone(src, dst string) error {
	if c.refuse {
		return core.PathError("clone", src, core.ErrUnsupported)
	}
	c.clones++
	data, err := c.raw.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = data.Close() }()
	out, err := c.raw.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, data); err != nil {
		return err
	}
	return out.Close()
}

func TestCopy_UsesCloner(t *testing.T) {
	tests := []struct {
		name       string
		refuse     bool
		same       bool
		wantClones int
		wantOpens  int
	}{
		{name: "same backend clones", same: true, wantClones: 1, wantOpens: 0},
		{name: "unsupported clone falls back", same: true, refuse: true, wantOpens: 1},
		{name: "different backend streams", same: false, wantOpens: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := memFS("mem:/")
			fstest.Populate(t, b)
			rec := record(b)
			c := &cloning{Backend: rec, raw: b, refuse: tt.refuse}

			require.NoError(t, newEngine().Copy(newSession(), c, c, "mem:/hello.txt", "mem:/copy.txt", tt.same))
			assert.Equal(t, "hello, world", string(fstest.ReadAll(t, b, "mem:/copy.txt")))
			assert.Equal(t, tt.wantClones, c.clones)
			assert.Len(t, rec.Ops("open"), tt.wantOpens)
		})
	}
}

// failWriter fails after limit bytes.
type failWriter struct {
	limit int
	n     int
}

func (w *failWriter) Write(p []byte) (int, error) {
	if w.n+len(p) > w.limit {
		return 0, errors.New("disk full")
	}
	w.n += len(p)
	return len(p), nil
}

// failReader fails after returning data once.
type failReader struct {
	data []byte
	done bool
}

func (r *failReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("device gone")
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestStream(t *testing.T) {
	data := bytes.Repeat([]byte("xfer"), 10000)

	for _, mode := range []copyMode{singleThreaded, multiThreaded} {
		e := newEngine(WithChunkSize(333), WithWorkers(2))

		var p progressLog
		s := session.New(context.Background(), "stream", session.WithProgress(p.record))
		var out bytes.Buffer
		n, err := e.stream(s, &out, bytes.NewReader(data), int64(len(data)), mode)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), n)
		assert.Equal(t, data, out.Bytes())
		require.NotEmpty(t, p.calls)
		assert.Equal(t, [2]int64{int64(len(data)), int64(len(data))}, p.calls[len(p.calls)-1])

		_, err = e.stream(newSession(), &failWriter{limit: 1000}, bytes.NewReader(data), int64(len(data)), mode)
		require.Error(t, err)
		assert.Equal(t, xerrors.CodeIO, xerrors.GetCode(err))

		_, err = e.stream(newSession(), io.Discard, &failReader{data: []byte("abc")}, 3, mode)
		require.Error(t, err)
		assert.Equal(t, xerrors.CodeIO, xerrors.GetCode(err))

		cancelled := newSession()
		cancelled.Cancel()
		_, err = e.stream(cancelled, io.Discard, bytes.NewReader(data), int64(len(data)), mode)
		require.Error(t, err)
		assert.True(t, xerrors.IsCancelled(err))
	}
}

func TestModeFor(t *testing.T) {
	e := newEngine(WithMultiThreadThreshold(100))
	native := memFS("mem:/")
	removable := memFS("usb:/", billy.WithKind(core.KindRemovable))
	ums := memFS("ums0:/")
	other := memFS("other:/")

	tests := []struct {
		name     string
		src, dst core.Backend
		size     int64
		want     copyMode
	}{
		{"below threshold", native, native, 99, singleThreaded},
		{"at threshold", native, native, 100, multiThreaded},
		{"unknown size", native, native, core.SizeUnknown, singleThreaded},
		{"across fast backends", native, other, 1 << 30, multiThreaded},
		{"removable source", removable, native, 1 << 30, singleThreaded},
		{"removable destination", native, removable, 1 << 30, singleThreaded},
		{"ums source", ums, native, 1 << 30, singleThreaded},
		{"ums destination", native, ums, 1 << 30, singleThreaded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.modeFor(tt.src, tt.dst, tt.size))
		})
	}
}
