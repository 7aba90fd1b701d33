package browse

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/stash"
)

const maxPatternLength = 256

// IsPattern reports whether name contains glob syntax.
func IsPattern(name string) bool {
	return strings.ContainsAny(name, "*?[{")
}

// Match returns the names of the visible entries matching pattern, in
// listing order. Patterns support *, ?, [abc] and {a,b}. No match is a
// CodeNotFound error.
func (v *View) Match(pattern string) ([]string, error) {
	if len(pattern) > maxPatternLength {
		return nil, errors.New(errors.CodeInvalidInput, "pattern too long")
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid pattern",
			map[string]interface{}{"pattern": pattern})
	}

	var names []string
	for _, e := range v.Entries() {
		if g.Match(e.Name) {
			names = append(names, e.Name)
		}
	}
	if len(names) == 0 {
		return nil, errors.WithContextMap(errors.New(errors.CodeNotFound, "no entries match pattern"),
			map[string]interface{}{"pattern": pattern, "path": v.path})
	}
	return names, nil
}

// MarkMatch selects every visible entry matching pattern and returns how
// many were marked.
func (v *View) MarkMatch(pattern string, op stash.Op) (int, error) {
	names, err := v.Match(pattern)
	if err != nil {
		return 0, err
	}
	return len(names), v.Mark(names, op)
}
