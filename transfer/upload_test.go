package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/fstest"
	"github.com/jmgilman/go/xfer/session"
	"github.com/jmgilman/go/xfer/stash"
	"github.com/jmgilman/go/xfer/upload"
)

// fakeTransport drains every pull stream into memory.
type fakeTransport struct {
	bufSize int
	err     error
	before  func()

	mu    sync.Mutex
	files map[string]string
	sizes map[string]int64
}

func (f *fakeTransport) Upload(_ context.Context, name string, size int64, pull upload.PullFunc) error {
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return f.err
	}

	buf := make([]byte, f.bufSize)
	var out []byte
	for {
		n, err := pull(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		out = append(out, buf[:n]...)
	}
	if n, _ := pull(buf); n != 0 {
		return fmt.Errorf("pull after end returned %d bytes", n)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.files == nil {
		f.files = map[string]string{}
		f.sizes = map[string]int64{}
	}
	f.files[name] = string(out)
	f.sizes[name] = size
	return nil
}

func TestUpload(t *testing.T) {
	b := memFS("mem:/")
	fstest.Populate(t, b)
	tr := &fakeTransport{bufSize: 3}

	var last [2]int64
	s := session.New(context.Background(), "upload", session.WithProgress(func(done, total int64) {
		last = [2]int64{done, total}
	}))
	st := mark(t, b, "mem:/", stash.None, "dir", "hello.txt")
	require.NoError(t, newEngine().Upload(s, st, tr))

	assert.Equal(t, map[string]string{
		"hello.txt":     "hello, world",
		"dir/a.txt":     "alpha",
		"dir/b.txt":     "bravo!",
		"dir/.hidden":   "h",
		"dir/sub/c.bin": "charlie",
	}, tr.files)
	assert.Equal(t, int64(12), tr.sizes["hello.txt"])
	assert.Equal(t, [2]int64{12, 12}, last)
}

func TestUpload_NamesRelativeToStashDirectory(t *testing.T) {
	b := memFS("mem:/")
	fstest.Populate(t, b)
	tr := &fakeTransport{bufSize: 64}

	require.NoError(t, newEngine().Upload(newSession(), mark(t, b, "mem:/dir", stash.None, "sub", "a.txt"), tr))
	assert.Equal(t, map[string]string{"a.txt": "alpha", "sub/c.bin": "charlie"}, tr.files)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
	}{
		{name: "coded error kept", err: errors.New(errors.CodeNetwork, "rejected"), code: errors.CodeNetwork},
		{name: "plain error wrapped", err: io.ErrClosedPipe, code: errors.CodeBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := memFS("mem:/")
			fstest.Populate(t, b)

			err := newEngine().Upload(newSession(), mark(t, b, "mem:/", stash.None, "hello.txt"), &fakeTransport{err: tt.err})
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestUpload_Cancelled(t *testing.T) {
	b := memFS("mem:/")
	fstest.Populate(t, b)
	s := newSession()
	tr := &fakeTransport{bufSize: 4, before: s.Cancel}

	err := newEngine().Upload(s, mark(t, b, "mem:/", stash.None, "hello.txt", "dir"), tr)
	require.Error(t, err)
	assert.True(t, errors.IsCancelled(err))
	assert.Empty(t, tr.files)
}

func TestUpload_HTTP(t *testing.T) {
	var mu sync.Mutex
	got := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		got[r.URL.Path] = string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	b := memFS("mem:/")
	fstest.Populate(t, b)
	tr := &upload.HTTPTransport{BaseURL: srv.URL + "/drop"}

	require.NoError(t, newEngine().Upload(newSession(), mark(t, b, "mem:/", stash.None, "dir"), tr))
	assert.Equal(t, map[string]string{
		"/drop/dir/a.txt":     "alpha",
		"/drop/dir/b.txt":     "bravo!",
		"/drop/dir/.hidden":   "h",
		"/drop/dir/sub/c.bin": "charlie",
	}, got)
}
