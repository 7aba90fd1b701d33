package fstest

import (
	"io"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmgilman/go/xfer/fs/core"
)

// Fixture is the tree every suite run starts from. Keys are slash paths
// relative to the backend root; values are file contents. Keys ending in
// "/" are empty directories.
var Fixture = map[string]string{
	"hello.txt":          "hello, world",
	"dir/a.txt":          "alpha",
	"dir/b.txt":          "bravo!",
	"dir/sub/c.bin":      "charlie",
	"dir/.hidden":        "h",
	"empty/":             "",
	"archive/inside.nsp": "nsp",
}

// FixtureFS returns Fixture as an io/fs filesystem for seeding read-only
// backends.
func FixtureFS() fstest.MapFS {
	m := fstest.MapFS{}
	for name, content := range Fixture {
		if name[len(name)-1] == '/' {
			m[name[:len(name)-1]] = &fstest.MapFile{Mode: fs.ModeDir | 0o755}
			continue
		}
		m[name] = &fstest.MapFile{Data: []byte(content), Mode: 0o644}
	}
	return m
}

// Populate writes Fixture into b through the Backend interface.
func Populate(t *testing.T, b core.Backend) {
	t.Helper()
	if err := core.Seed(b, b.Root(), FixtureFS(), "."); err != nil {
		t.Fatalf("Populate: seeding fixture failed: %v", err)
	}
}

// ReadAll opens p on b and returns its contents.
func ReadAll(t *testing.T, b core.Backend, p string) []byte {
	t.Helper()
	f, err := b.Open(p)
	if err != nil {
		t.Fatalf("Open(%s): %v", p, err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll(%s): %v", p, err)
	}
	return data
}

// WriteFile creates p on b with data.
func WriteFile(t *testing.T, b core.Backend, p string, data []byte) {
	t.Helper()
	f, err := b.Create(p)
	if err != nil {
		t.Fatalf("Create(%s): %v", p, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		t.Fatalf("Write(%s): %v", p, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close(%s): %v", p, err)
	}
}

func names(entries []core.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
