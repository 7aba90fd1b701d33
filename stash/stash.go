// Package stash holds the single outstanding selection: the entries a user
// marked, the directory they were marked in and what should happen to them.
//
// A Stash is owned by the caller and handed to the transfer engine, which
// only reads it. The caller resets it once the operation has finished.
package stash

import (
	"github.com/jmgilman/go/xfer/fs/core"
)

// Op is the intent recorded with a selection.
type Op int

const (
	// None means nothing is selected.
	None Op = iota
	// Cut moves the selection on paste.
	Cut
	// Copy duplicates the selection on paste.
	Copy
	// Delete removes the selection.
	Delete
)

// String returns a string representation of the Op.
func (o Op) String() string {
	switch o {
	case Cut:
		return "cut"
	case Copy:
		return "copy"
	case Delete:
		return "delete"
	default:
		return "none"
	}
}

// View identifies the browse view a selection was made in.
type View interface {
	// Backend returns the filesystem the view is browsing.
	Backend() core.Backend

	// Path returns the directory the view is showing.
	Path() string
}

// Stash is a single-slot selection. The zero value is empty.
type Stash struct {
	view    View
	backend core.Backend
	path    string
	entries []core.Entry
	op      Op
}

// New returns an empty stash.
func New() *Stash {
	return &Stash{}
}

// Mark replaces the selection with entries from view's current directory.
// Entries with a repeated name are dropped, keeping the first.
func (s *Stash) Mark(view View, entries []core.Entry, op Op) {
	seen := make(map[string]struct{}, len(entries))
	kept := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		kept = append(kept, e)
	}

	s.view = view
	s.backend = view.Backend()
	s.path = view.Path()
	s.entries = kept
	s.op = op
}

// SameBackend reports whether other browses the filesystem the selection
// was made on. An empty stash matches nothing.
func (s *Stash) SameBackend(other View) bool {
	if s.backend == nil || other == nil {
		return false
	}
	return core.SameBackend(s.backend, other.Backend())
}

// View returns the view the selection was made in.
func (s *Stash) View() View { return s.view }

// Backend returns the filesystem the selection lives on.
func (s *Stash) Backend() core.Backend { return s.backend }

// Path returns the directory holding the selected entries.
func (s *Stash) Path() string { return s.path }

// Op returns the recorded intent.
func (s *Stash) Op() Op { return s.op }

// Entries returns a copy of the selected entries in marking order.
func (s *Stash) Entries() []core.Entry {
	out := make([]core.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// EntryPath returns the full path of a selected entry.
func (s *Stash) EntryPath(e core.Entry) string {
	return core.Join(s.path, e.Name)
}

// Len returns the number of selected entries.
func (s *Stash) Len() int { return len(s.entries) }

// Empty reports whether nothing is selected.
func (s *Stash) Empty() bool { return len(s.entries) == 0 }

// Reset clears the selection.
func (s *Stash) Reset() {
	*s = Stash{}
}
