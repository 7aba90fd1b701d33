package fstest

import (
	"errors"
	"io"
	"testing"

	"github.com/jmgilman/go/xfer/fs/core"
)

// TestRead checks Open, Stat, Exists and IsDirEmpty.
func TestRead(t *testing.T, b core.Backend, config Config) {
	root := b.Root()

	run(t, config, "Read", "Open", func(t *testing.T) {
		p := core.Join(root, "hello.txt")
		if got := string(ReadAll(t, b, p)); got != "hello, world" {
			t.Errorf("content of %s = %q, want %q", p, got, "hello, world")
		}
	})

	run(t, config, "Read", "ReadAt", func(t *testing.T) {
		p := core.Join(root, "dir", "sub", "c.bin")
		f, err := b.Open(p)
		if err != nil {
			t.Fatalf("Open(%s): %v", p, err)
		}
		defer func() { _ = f.Close() }()
		ra, ok := f.(io.ReaderAt)
		if !ok {
			t.Skip("file does not implement io.ReaderAt")
		}
		buf := make([]byte, 3)
		if _, err := ra.ReadAt(buf, 2); err != nil && !errors.Is(err, io.EOF) {
			t.Fatalf("ReadAt: %v", err)
		}
		if string(buf) != "arl" {
			t.Errorf("ReadAt(2) = %q, want %q", buf, "arl")
		}
	})

	run(t, config, "Read", "OpenMissing", func(t *testing.T) {
		_, err := b.Open(core.Join(root, "missing.txt"))
		if !errors.Is(err, core.ErrNotExist) {
			t.Errorf("Open(missing.txt): got %v, want ErrNotExist", err)
		}
	})

	run(t, config, "Read", "Stat", func(t *testing.T) {
		e, err := b.Stat(core.Join(root, "dir", "a.txt"))
		if err != nil {
			t.Fatalf("Stat(dir/a.txt): %v", err)
		}
		if e.Name != "a.txt" || !e.IsFile() || e.Size != 5 {
			t.Errorf("Stat(dir/a.txt) = %+v, want file a.txt of size 5", e)
		}
		d, err := b.Stat(core.Join(root, "dir"))
		if err != nil {
			t.Fatalf("Stat(dir): %v", err)
		}
		if !d.IsDir() {
			t.Errorf("Stat(dir) = %+v, want directory", d)
		}
	})

	run(t, config, "Read", "Exists", func(t *testing.T) {
		for p, want := range map[string]bool{
			core.Join(root, "hello.txt"): true,
			core.Join(root, "dir"):       true,
			core.Join(root, "empty"):     true,
			core.Join(root, "nothing"):   false,
		} {
			got, err := b.Exists(p)
			if err != nil {
				t.Fatalf("Exists(%s): %v", p, err)
			}
			if got != want {
				t.Errorf("Exists(%s) = %v, want %v", p, got, want)
			}
		}
	})

	run(t, config, "Read", "IsDirEmpty", func(t *testing.T) {
		empty, err := b.IsDirEmpty(core.Join(root, "empty"))
		if err != nil {
			t.Fatalf("IsDirEmpty(empty): %v", err)
		}
		if !empty {
			t.Errorf("IsDirEmpty(empty) = false, want true")
		}
		empty, err = b.IsDirEmpty(core.Join(root, "dir"))
		if err != nil {
			t.Fatalf("IsDirEmpty(dir): %v", err)
		}
		if empty {
			t.Errorf("IsDirEmpty(dir) = true, want false")
		}
	})
}
