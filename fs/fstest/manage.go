package fstest

import (
	"errors"
	"testing"

	"github.com/jmgilman/go/xfer/fs/core"
)

// TestManage checks removal and rename semantics.
func TestManage(t *testing.T, b core.Backend, config Config) {
	root := b.Root()

	if config.ReadOnly {
		run(t, config, "Manage", "Refused", func(t *testing.T) {
			if err := b.RemoveFile(core.Join(root, "hello.txt")); !errors.Is(err, core.ErrReadOnly) {
				t.Errorf("RemoveFile: got %v, want ErrReadOnly", err)
			}
			if err := b.RemoveDir(core.Join(root, "empty")); !errors.Is(err, core.ErrReadOnly) {
				t.Errorf("RemoveDir: got %v, want ErrReadOnly", err)
			}
			if err := b.RenameFile(core.Join(root, "hello.txt"), core.Join(root, "x.txt")); !errors.Is(err, core.ErrReadOnly) {
				t.Errorf("RenameFile: got %v, want ErrReadOnly", err)
			}
		})
		return
	}

	run(t, config, "Manage", "RemoveFile", func(t *testing.T) {
		p := core.Join(root, "dir", "a.txt")
		if err := b.RemoveFile(p); err != nil {
			t.Fatalf("RemoveFile(%s): %v", p, err)
		}
		if ok, _ := b.Exists(p); ok {
			t.Errorf("%s still exists after RemoveFile", p)
		}
		if err := b.RemoveFile(p); !errors.Is(err, core.ErrNotExist) {
			t.Errorf("second RemoveFile(%s): got %v, want ErrNotExist", p, err)
		}
	})

	run(t, config, "Manage", "RemoveDirNotEmpty", func(t *testing.T) {
		p := core.Join(root, "dir", "sub")
		if err := b.RemoveDir(p); !errors.Is(err, core.ErrNotEmpty) {
			t.Errorf("RemoveDir(%s): got %v, want ErrNotEmpty", p, err)
		}
		if ok, _ := b.Exists(core.Join(p, "c.bin")); !ok {
			t.Errorf("RemoveDir on a non-empty directory removed its child")
		}
	})

	run(t, config, "Manage", "RemoveDirEmpty", func(t *testing.T) {
		p := core.Join(root, "empty")
		if err := b.RemoveDir(p); err != nil {
			t.Fatalf("RemoveDir(%s): %v", p, err)
		}
		if ok, _ := b.Exists(p); ok {
			t.Errorf("%s still exists after RemoveDir", p)
		}
	})

	run(t, config, "Manage", "RenameFile", func(t *testing.T) {
		src := core.Join(root, "hello.txt")
		dst := core.Join(root, "dir", "greeting.txt")
		if err := b.RenameFile(src, dst); err != nil {
			t.Fatalf("RenameFile: %v", err)
		}
		if ok, _ := b.Exists(src); ok {
			t.Errorf("source %s still exists after rename", src)
		}
		if got := string(ReadAll(t, b, dst)); got != "hello, world" {
			t.Errorf("content of %s = %q, want %q", dst, got, "hello, world")
		}
	})

	run(t, config, "Manage", "RenameDir", func(t *testing.T) {
		src := core.Join(root, "dir")
		dst := core.Join(root, "moved")
		if err := b.RenameDir(src, dst); err != nil {
			t.Fatalf("RenameDir: %v", err)
		}
		if ok, _ := b.Exists(src); ok {
			t.Errorf("source %s still exists after rename", src)
		}
		if got := string(ReadAll(t, b, core.Join(dst, "sub", "c.bin"))); got != "charlie" {
			t.Errorf("moved/sub/c.bin = %q, want %q", got, "charlie")
		}
	})

	run(t, config, "Manage", "RenameDirIntoItself", func(t *testing.T) {
		src := core.Join(root, "archive")
		if err := b.RenameDir(src, core.Join(src, "inner")); err == nil {
			t.Errorf("RenameDir into its own subtree succeeded")
		}
	})
}
