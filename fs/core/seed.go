package core

import (
	"io"
	"io/fs"
	"strings"
)

// Seed copies the tree rooted at srcRoot in src into dst below dstDir,
// creating directories as needed. It is the usual way to load fixtures or
// embedded content into a Backend.
//
// Example:
//
//	//go:embed fixtures/*
//	var fixtures embed.FS
//
//	mem := billy.NewMemory()
//	err := core.Seed(mem, mem.Root(), fixtures, "fixtures")
func Seed(dst Backend, dstDir string, src fs.FS, srcRoot string) error {
	return fs.WalkDir(src, srcRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := p
		if srcRoot != "." && srcRoot != "" {
			rel = strings.TrimPrefix(strings.TrimPrefix(p, srcRoot), "/")
		}
		if rel == "." {
			rel = ""
		}
		target := Join(dstDir, rel)

		if d.IsDir() {
			return dst.MkdirAll(target)
		}

		in, err := src.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := dst.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			_ = out.Close()
			return err
		}
		return out.Close()
	})
}
