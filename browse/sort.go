package browse

import (
	"sort"
	"strings"

	"github.com/jmgilman/go/xfer/fs/core"
)

// SortBy selects the primary sort key.
type SortBy int

const (
	// SortAlpha sorts by name, ignoring case.
	SortAlpha SortBy = iota
	// SortSize sorts by file size. Equal sizes fall back to the name.
	SortSize
)

// Order is the sort direction.
type Order int

const (
	// Ascending puts A before Z and small before large.
	Ascending Order = iota
	// Descending reverses Ascending.
	Descending
)

// SortOptions controls how a listing is ordered and filtered.
type SortOptions struct {
	By    SortBy
	Order Order

	// FoldersFirst places directories before files.
	FoldersFirst bool

	// HiddenLast places dot-entries after everything else. It takes
	// precedence over FoldersFirst.
	HiddenLast bool

	// ShowHidden includes dot-entries in Entries.
	ShowHidden bool
}

// DefaultSortOptions returns name order with folders first and hidden
// entries last and not shown.
func DefaultSortOptions() SortOptions {
	return SortOptions{
		By:           SortAlpha,
		Order:        Ascending,
		FoldersFirst: true,
		HiddenLast:   true,
	}
}

// Sort orders entries in place.
func (o SortOptions) Sort(entries []core.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return o.less(entries[i], entries[j])
	})
}

func (o SortOptions) less(a, b core.Entry) bool {
	if o.HiddenLast && a.IsHidden() != b.IsHidden() {
		return !a.IsHidden()
	}
	if o.FoldersFirst && a.IsDir() != b.IsDir() {
		return a.IsDir()
	}

	if o.By == SortSize && a.Size != b.Size {
		if o.Order == Descending {
			return a.Size > b.Size
		}
		return a.Size < b.Size
	}

	c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	if o.By == SortAlpha && o.Order == Descending {
		return c > 0
	}
	return c < 0
}

// filter drops hidden entries unless ShowHidden is set.
func (o SortOptions) filter(entries []core.Entry) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if !o.ShowHidden && e.IsHidden() {
			continue
		}
		out = append(out, e)
	}
	return out
}
