package core

import (
	"io"
	"time"
)

// Kind describes what sort of storage sits behind a Backend.
type Kind int

const (
	// KindUnknown indicates the backend kind is unspecified.
	KindUnknown Kind = iota
	// KindNative is the device's primary storage, accessed directly.
	KindNative
	// KindRemovable is external storage such as a USB mass-storage device.
	KindRemovable
	// KindMemory is an in-memory filesystem.
	KindMemory
	// KindImage is a read-only mounted image.
	KindImage
	// KindNetwork is a network share or object store.
	KindNetwork
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindRemovable:
		return "removable"
	case KindMemory:
		return "memory"
	case KindImage:
		return "image"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String. Unrecognised names map to
// KindUnknown.
func ParseKind(s string) Kind {
	for k := KindNative; k <= KindNetwork; k++ {
		if k.String() == s {
			return k
		}
	}
	return KindUnknown
}

// ListMode selects which entries List returns.
type ListMode uint8

const (
	// ListFiles includes regular files.
	ListFiles ListMode = 1 << iota
	// ListDirs includes directories.
	ListDirs
	// ListNoFileSize skips size lookups; file sizes are reported as SizeUnknown.
	ListNoFileSize

	// ListAll includes files and directories.
	ListAll = ListFiles | ListDirs
)

// Has reports whether all bits of flag are set.
func (m ListMode) Has(flag ListMode) bool {
	return m&flag == flag
}

// Backend is the capability set the transfer engine requires from a
// filesystem. Paths are absolute and start with Root().
type Backend interface {
	// Root returns the path prefix every path on this backend starts with.
	Root() string

	// Kind returns the storage kind.
	Kind() Kind

	// IsNative reports whether the backend is the device's native
	// filesystem. Non-native destinations receive explicit timestamps after
	// a copy.
	IsNative() bool

	// List returns the entries of the directory at path filtered by mode,
	// sorted by name.
	List(path string, mode ListMode) ([]Entry, error)

	// Open opens the file at path for reading.
	Open(path string) (File, error)

	// Create creates or truncates the file at path for writing. The parent
	// directory must exist.
	Create(path string) (File, error)

	// Stat returns the entry describing path.
	Stat(path string) (Entry, error)

	// Mkdir creates a single directory. The parent must exist.
	Mkdir(path string) error

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string) error

	// RemoveFile deletes the file at path.
	RemoveFile(path string) error

	// RemoveDir deletes the directory at path. It fails with ErrNotEmpty
	// when the directory has children.
	RemoveDir(path string) error

	// RenameFile moves a file within the backend.
	RenameFile(src, dst string) error

	// RenameDir moves a directory and its contents within the backend.
	RenameDir(src, dst string) error

	// Exists reports whether path exists. A false result with a non-nil
	// error means existence could not be determined.
	Exists(path string) (bool, error)

	// IsDirEmpty reports whether the directory at path has no children.
	IsDirEmpty(path string) (bool, error)
}

// File is an open file handle returned by Backend.Open or Backend.Create.
//
// Optional capabilities (use type assertions):
//
//   - io.ReaderAt: ReadAt(p []byte, off int64) (n int, err error)
type File interface {
	io.Reader
	io.Writer
	io.Closer

	// Name returns the path the file was opened with.
	Name() string
}

// Timestamp is the raw timestamp record of a file.
type Timestamp struct {
	Created  time.Time
	Modified time.Time
	Accessed time.Time
}

// Timestamper reads and writes raw timestamps.
//
//	if ts, ok := b.(core.Timestamper); ok {
//	    err := ts.SetTimestamp(path, stamp)
//	}
type Timestamper interface {
	// Timestamp returns the raw timestamp of the file at path.
	Timestamp(path string) (Timestamp, error)

	// SetTimestamp applies stamp to the file at path. Zero fields are left
	// unchanged where the backend can express that.
	SetTimestamp(path string, stamp Timestamp) error
}

// Cloner copies a file to another path on the same backend without routing
// the bytes through the caller.
type Cloner interface {
	Clone(src, dst string) error
}

// SameBackend reports whether a and b address the same filesystem. Two
// backends match when their roots and kinds are equal.
func SameBackend(a, b Backend) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Root() == b.Root() && a.Kind() == b.Kind()
}
