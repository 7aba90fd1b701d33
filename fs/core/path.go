package core

import (
	"strings"
)

// Join appends elem to base with single '/' separators. Empty elements are
// skipped, so Join("sdmc:/", "a") is "sdmc:/a" and Join("sdmc:/a", "b/c") is
// "sdmc:/a/b/c".
func Join(base string, elem ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, e := range elem {
		e = strings.Trim(e, "/")
		if e == "" {
			continue
		}
		if s := b.String(); s != "" && !strings.HasSuffix(s, "/") {
			b.WriteByte('/')
		}
		b.WriteString(e)
	}
	return b.String()
}

// Base returns the last element of p. The root itself yields "".
func Base(p string) string {
	p = strings.TrimSuffix(p, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	if strings.HasSuffix(p, ":") {
		return ""
	}
	return p
}

// Dir returns p without its last element. The parent of a top-level entry is
// the root, including its trailing slash: Dir("sdmc:/a") is "sdmc:/".
func Dir(p string) string {
	if strings.HasSuffix(p, ":/") || p == "/" {
		return p
	}
	p = strings.TrimSuffix(p, "/")
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return p
	}
	d := p[:i]
	if d == "" || strings.HasSuffix(d, ":") {
		return p[:i+1]
	}
	return d
}

// Rel returns p relative to base with no leading slash. ok is false when p is
// not base or below it.
func Rel(base, p string) (rel string, ok bool) {
	if p == base || p == strings.TrimSuffix(base, "/") {
		return "", true
	}
	prefix := base
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return strings.Trim(p[len(prefix):], "/"), true
}

// Within reports whether p equals dir or lies below it.
func Within(dir, p string) bool {
	_, ok := Rel(dir, p)
	return ok
}
