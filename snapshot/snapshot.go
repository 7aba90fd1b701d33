// Package snapshot captures point-in-time listings of a directory or a whole
// subtree on a core.Backend.
//
// A Collections value is captured entirely before any operation mutates the
// tree. Entries created afterwards are never visited, and entries removed
// afterwards only surface as errors from the later steps that touch them.
package snapshot

import (
	"context"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/fs/core"
)

// Collection is the immediate listing of one directory.
type Collection struct {
	// Path is the directory that was listed.
	Path string

	// ParentName is the directory's name relative to the selection it was
	// reached from, e.g. "dir1/sub". Joining it onto a destination directory
	// gives the directory's destination path.
	ParentName string

	// Files holds the directory's regular files, sorted by name.
	Files []core.Entry

	// Dirs holds the directory's subdirectories, sorted by name.
	Dirs []core.Entry
}

// Collections is a pre-order sequence of Collection values: a directory's
// collection always precedes the collections of its descendants.
type Collections []Collection

// Collect lists path on b. Files are included when includeFiles is set and
// directories when includeDirs is set. When includeSizes is false the
// backend may skip per-file size lookups and report core.SizeUnknown.
//
// Failures are returned as CodeBackend errors.
func Collect(b core.Backend, path, parentName string, includeFiles, includeDirs, includeSizes bool) (Collection, error) {
	c := Collection{Path: path, ParentName: parentName}

	if includeFiles {
		mode := core.ListFiles
		if !includeSizes {
			mode |= core.ListNoFileSize
		}
		files, err := b.List(path, mode)
		if err != nil {
			return Collection{}, wrapList(err, path)
		}
		c.Files = files
	}

	if includeDirs {
		dirs, err := b.List(path, core.ListDirs)
		if err != nil {
			return Collection{}, wrapList(err, path)
		}
		c.Dirs = dirs
	}

	return c, nil
}

// frame is one pending directory on the CollectTree work stack.
type frame struct {
	path       string
	parentName string
}

// CollectTree captures path and every directory below it in pre-order. The
// root collection comes first, followed by the subtree of each child
// directory in listing order.
//
// Traversal uses a heap-allocated work stack, so tree depth is not bounded by
// the goroutine stack. ctx is checked once per directory; on cancellation the
// partial result is discarded and a CodeCancelled error is returned.
func CollectTree(ctx context.Context, b core.Backend, path, parentName string, includeSizes bool) (Collections, error) {
	var out Collections
	stack := []*frame{{path: path, parentName: parentName}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeCancelled, "directory scan cancelled")
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c, err := Collect(b, top.path, top.parentName, true, true, includeSizes)
		if err != nil {
			return nil, err
		}
		out = append(out, c)

		// Push in reverse so the first child is expanded next.
		for i := len(c.Dirs) - 1; i >= 0; i-- {
			name := c.Dirs[i].Name
			stack = append(stack, &frame{
				path:       core.Join(top.path, name),
				parentName: joinName(top.parentName, name),
			})
		}
	}

	return out, nil
}

// FileCount returns the number of files across all collections.
func (cs Collections) FileCount() int {
	n := 0
	for _, c := range cs {
		n += len(c.Files)
	}
	return n
}

// DirCount returns the number of subdirectories across all collections. The
// roots the collections were captured from are not counted.
func (cs Collections) DirCount() int {
	n := 0
	for _, c := range cs {
		n += len(c.Dirs)
	}
	return n
}

// TotalSize sums the sizes of all files with a known size.
func (cs Collections) TotalSize() int64 {
	var n int64
	for _, c := range cs {
		for _, f := range c.Files {
			if f.Size > 0 {
				n += f.Size
			}
		}
	}
	return n
}

func joinName(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func wrapList(err error, path string) error {
	return errors.WrapWithContext(err, errors.CodeBackend, "failed to list directory",
		map[string]interface{}{"path": path})
}
