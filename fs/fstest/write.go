package fstest

import (
	"errors"
	"testing"

	"github.com/jmgilman/go/xfer/fs/core"
)

// TestWrite checks Create, Mkdir and MkdirAll, or that they are refused on
// read-only backends.
func TestWrite(t *testing.T, b core.Backend, config Config) {
	root := b.Root()

	if config.ReadOnly {
		run(t, config, "Write", "Refused", func(t *testing.T) {
			if _, err := b.Create(core.Join(root, "new.txt")); !errors.Is(err, core.ErrReadOnly) {
				t.Errorf("Create: got %v, want ErrReadOnly", err)
			}
			if err := b.Mkdir(core.Join(root, "newdir")); !errors.Is(err, core.ErrReadOnly) {
				t.Errorf("Mkdir: got %v, want ErrReadOnly", err)
			}
			if err := b.MkdirAll(core.Join(root, "x", "y")); !errors.Is(err, core.ErrReadOnly) {
				t.Errorf("MkdirAll: got %v, want ErrReadOnly", err)
			}
		})
		return
	}

	run(t, config, "Write", "CreateAndRead", func(t *testing.T) {
		p := core.Join(root, "dir", "new.txt")
		WriteFile(t, b, p, []byte("fresh"))
		if got := string(ReadAll(t, b, p)); got != "fresh" {
			t.Errorf("content of %s = %q, want %q", p, got, "fresh")
		}
	})

	run(t, config, "Write", "CreateTruncates", func(t *testing.T) {
		p := core.Join(root, "hello.txt")
		WriteFile(t, b, p, []byte("hi"))
		if got := string(ReadAll(t, b, p)); got != "hi" {
			t.Errorf("content of %s = %q, want %q", p, got, "hi")
		}
	})

	run(t, config, "Write", "CreateWithoutParent", func(t *testing.T) {
		if config.ImplicitParentDirs {
			t.Skip("backend creates parents implicitly")
		}
		_, err := b.Create(core.Join(root, "ghost", "file.txt"))
		if !errors.Is(err, core.ErrNotExist) {
			t.Errorf("Create(ghost/file.txt): got %v, want ErrNotExist", err)
		}
	})

	run(t, config, "Write", "Mkdir", func(t *testing.T) {
		p := core.Join(root, "made")
		if err := b.Mkdir(p); err != nil {
			t.Fatalf("Mkdir(%s): %v", p, err)
		}
		e, err := b.Stat(p)
		if err != nil || !e.IsDir() {
			t.Errorf("Stat(%s) = %+v, %v; want directory", p, e, err)
		}
		if err := b.Mkdir(p); !errors.Is(err, core.ErrExist) {
			t.Errorf("second Mkdir(%s): got %v, want ErrExist", p, err)
		}
	})

	run(t, config, "Write", "MkdirAll", func(t *testing.T) {
		p := core.Join(root, "deep", "er", "est")
		if err := b.MkdirAll(p); err != nil {
			t.Fatalf("MkdirAll(%s): %v", p, err)
		}
		for _, d := range []string{"deep", "deep/er", "deep/er/est"} {
			ok, err := b.Exists(core.Join(root, d))
			if err != nil || !ok {
				t.Errorf("Exists(%s) = %v, %v; want true", d, ok, err)
			}
		}
		if err := b.MkdirAll(p); err != nil {
			t.Errorf("repeated MkdirAll(%s): %v", p, err)
		}
	})
}
