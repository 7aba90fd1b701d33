package core

import (
	"strings"
	"time"
)

// SizeUnknown is reported for directories and for files listed with
// ListNoFileSize.
const SizeUnknown int64 = -1

// EntryType distinguishes files from directories.
type EntryType uint8

const (
	// TypeFile is a regular file.
	TypeFile EntryType = iota
	// TypeDir is a directory.
	TypeDir
)

// String returns "file" or "dir".
func (t EntryType) String() string {
	if t == TypeDir {
		return "dir"
	}
	return "file"
}

// Entry is a single directory listing record. Name is a bare name without
// any path separators.
type Entry struct {
	Name    string
	Type    EntryType
	Size    int64
	ModTime time.Time
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Type == TypeDir }

// IsFile reports whether the entry is a regular file.
func (e Entry) IsFile() bool { return e.Type == TypeFile }

// IsHidden reports whether the entry name starts with a dot.
func (e Entry) IsHidden() bool { return strings.HasPrefix(e.Name, ".") }

// Ext returns the lower-cased extension without the leading dot, or "" when
// the name has none.
func (e Entry) Ext() string {
	return Ext(e.Name)
}

// Ext returns the lower-cased extension of name without the leading dot.
func Ext(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// FileEntry is a convenience constructor for a file entry.
func FileEntry(name string, size int64) Entry {
	return Entry{Name: name, Type: TypeFile, Size: size}
}

// DirEntry is a convenience constructor for a directory entry.
func DirEntry(name string) Entry {
	return Entry{Name: name, Type: TypeDir, Size: SizeUnknown}
}
