// Package pathutil maps backend-relative paths onto S3 object keys.
//
// Files live at "prefix/rel". Directories are marker objects at
// "prefix/rel/" so that empty directories survive.
package pathutil

import (
	"path"
	"strings"
)

// NormalizePrefix converts backslashes, cleans the prefix and strips
// surrounding slashes. "." and "" both yield "".
func NormalizePrefix(prefix string) string {
	prefix = strings.ReplaceAll(prefix, "\\", "/")
	prefix = strings.Trim(path.Clean("/"+prefix), "/")
	return prefix
}

// Key returns the object key of the file at rel.
func Key(prefix, rel string) string {
	rel = strings.Trim(path.Clean("/"+rel), "/")
	switch {
	case prefix == "":
		return rel
	case rel == "":
		return prefix
	default:
		return prefix + "/" + rel
	}
}

// DirKey returns the listing prefix of the directory at rel, which is also
// the key of its marker object. The bucket root yields "" when prefix is
// empty.
func DirKey(prefix, rel string) string {
	k := Key(prefix, rel)
	if k == "" {
		return ""
	}
	return k + "/"
}

// ChildName returns the name of objectKey relative to dirKey and whether it
// names a directory. ok is false for the directory's own marker.
func ChildName(dirKey, objectKey string) (name string, isDir bool, ok bool) {
	rel := strings.TrimPrefix(objectKey, dirKey)
	isDir = strings.HasSuffix(rel, "/")
	name = strings.TrimSuffix(rel, "/")
	if name == "" || strings.Contains(name, "/") {
		return "", false, false
	}
	return name, isDir, true
}
