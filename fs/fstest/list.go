package fstest

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jmgilman/go/xfer/fs/core"
)

// TestList checks List filtering, ordering and size reporting.
func TestList(t *testing.T, b core.Backend, config Config) {
	dir := core.Join(b.Root(), "dir")

	run(t, config, "List", "All", func(t *testing.T) {
		entries, err := b.List(dir, core.ListAll)
		if err != nil {
			t.Fatalf("List(%s): %v", dir, err)
		}
		want := []string{".hidden", "a.txt", "b.txt", "sub"}
		if got := names(entries); !reflect.DeepEqual(got, want) {
			t.Errorf("List(%s) = %v, want %v", dir, got, want)
		}
	})

	run(t, config, "List", "FilesOnly", func(t *testing.T) {
		entries, err := b.List(dir, core.ListFiles)
		if err != nil {
			t.Fatalf("List(%s): %v", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				t.Errorf("List(ListFiles) returned directory %q", e.Name)
			}
			if e.Name == "b.txt" && e.Size != 6 {
				t.Errorf("b.txt size = %d, want 6", e.Size)
			}
		}
		if len(entries) != 3 {
			t.Errorf("List(ListFiles) returned %d entries, want 3", len(entries))
		}
	})

	run(t, config, "List", "DirsOnly", func(t *testing.T) {
		entries, err := b.List(b.Root(), core.ListDirs)
		if err != nil {
			t.Fatalf("List(root): %v", err)
		}
		want := []string{"archive", "dir", "empty"}
		if got := names(entries); !reflect.DeepEqual(got, want) {
			t.Errorf("List(root, ListDirs) = %v, want %v", got, want)
		}
		for _, e := range entries {
			if e.Size != core.SizeUnknown {
				t.Errorf("directory %q size = %d, want SizeUnknown", e.Name, e.Size)
			}
		}
	})

	run(t, config, "List", "NoFileSize", func(t *testing.T) {
		entries, err := b.List(dir, core.ListFiles|core.ListNoFileSize)
		if err != nil {
			t.Fatalf("List(%s): %v", dir, err)
		}
		for _, e := range entries {
			if e.Size != core.SizeUnknown {
				t.Errorf("%q size = %d, want SizeUnknown", e.Name, e.Size)
			}
		}
	})

	run(t, config, "List", "Missing", func(t *testing.T) {
		_, err := b.List(core.Join(b.Root(), "nope"), core.ListAll)
		if !errors.Is(err, core.ErrNotExist) {
			t.Errorf("List(nope): got %v, want ErrNotExist", err)
		}
	})

	run(t, config, "List", "OutsideRoot", func(t *testing.T) {
		_, err := b.List("elsewhere:/dir", core.ListAll)
		if !errors.Is(err, core.ErrOutsideRoot) {
			t.Errorf("List(elsewhere:/dir): got %v, want ErrOutsideRoot", err)
		}
	})
}
