// Package validate checks archive member names before they are turned into
// filesystem paths.
package validate

import (
	"fmt"
	"path"
	"strings"
)

// PathValidator rejects member names that would escape the extraction
// directory or that no backend can represent.
type PathValidator struct {
	// AllowHiddenFiles permits path components starting with '.'.
	AllowHiddenFiles bool
}

// NewPathValidator returns a validator that allows hidden files.
func NewPathValidator() *PathValidator {
	return &PathValidator{AllowHiddenFiles: true}
}

// ValidatePath returns nil if name is a safe relative member name.
func (v *PathValidator) ValidatePath(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty path")
	}

	if isAbsolutePath(name) {
		return fmt.Errorf("absolute path not allowed: %s", name)
	}

	if err := detectPathTraversal(name); err != nil {
		return err
	}

	if err := detectProblematicCharacters(name); err != nil {
		return err
	}

	if !v.AllowHiddenFiles && isHidden(name) {
		return fmt.Errorf("hidden files not allowed: %s", name)
	}

	return nil
}

// IsPathSafe reports whether ValidatePath accepts name.
func (v *PathValidator) IsPathSafe(name string) bool {
	return v.ValidatePath(name) == nil
}

func detectPathTraversal(name string) error {
	lower := strings.ToLower(name)
	for _, variant := range []string{"..%2f", "..%5c", "%2e%2e%2f", "%2e%2e%5c", "%2e%2e/", "%2e%2e\\"} {
		if strings.Contains(lower, variant) {
			return fmt.Errorf("encoded path traversal detected: %s", name)
		}
	}

	if strings.HasPrefix(path.Clean(name), "..") {
		return fmt.Errorf("path traversal detected: %s", name)
	}

	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("path traversal detected: %s", name)
		}
	}

	return nil
}

func detectProblematicCharacters(name string) error {
	for _, r := range name {
		if r < 32 || r == 127 {
			return fmt.Errorf("control character detected in path: %q (U+%04X)", name, r)
		}
	}
	if strings.ContainsRune(name, ':') {
		return fmt.Errorf("drive or mount separator in path: %s", name)
	}
	return nil
}

func isAbsolutePath(name string) bool {
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, "\\") {
		return true
	}
	// C:\ and C:/
	if len(name) >= 2 && name[1] == ':' {
		d := name[0]
		if (d >= 'A' && d <= 'Z') || (d >= 'a' && d <= 'z') {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
