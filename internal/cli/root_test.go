package cli

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/xfer/errors"
)

// workspace is a config file with two native mounts backed by temp dirs.
type workspace struct {
	config string
	a, b   string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	w := workspace{
		config: filepath.Join(root, "xfer.yaml"),
		a:      filepath.Join(root, "a"),
		b:      filepath.Join(root, "b"),
	}
	require.NoError(t, os.MkdirAll(w.a, 0o755))
	require.NoError(t, os.MkdirAll(w.b, 0o755))

	cfg := "log:\n  level: error\nengine:\n  delete_throttle: 0s\nmounts:\n" +
		"  - name: a\n    kind: native\n    dir: " + w.a + "\n" +
		"  - name: b\n    kind: native\n    dir: " + w.b + "\n"
	require.NoError(t, os.WriteFile(w.config, []byte(cfg), 0o644))
	return w
}

func (w workspace) write(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func (w workspace) read(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// execute runs the CLI and returns stdout.
func (w workspace) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", w.config}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	cmd := NewRootCommand("test")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	for _, sub := range []string{"copy", "move", "delete", "zip", "unzip", "upload", "hash", "ls", "mounts"} {
		assert.Contains(t, buf.String(), sub)
	}
}

func TestRootCommand_Version(t *testing.T) {
	cmd := NewRootCommand("1.2.3")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "1.2.3\n", buf.String())
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	cmd := NewRootCommand("test")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"invalid-command"})

	assert.Error(t, cmd.Execute())
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, os.WriteFile(w.config, []byte("mounts:\n  - name: x\n    kind: floppy\n"), 0o644))

	_, err := w.execute(t, "mounts")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestMounts(t *testing.T) {
	w := newWorkspace(t)

	out, err := w.execute(t, "mounts")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"a", "native", "a:/"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"b", "native", "b:/"}, strings.Fields(lines[1]))
}

func TestLs(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, w.a, "big.bin", "0123456789")
	w.write(t, w.a, "small.txt", "x")
	w.write(t, w.a, "sub/inner.txt", "inner")
	w.write(t, w.a, ".hidden", "h")

	names := func(out string) []string {
		var got []string
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			fields := strings.Fields(line)
			got = append(got, fields[len(fields)-1])
		}
		return got
	}

	out, err := w.execute(t, "ls", "a:/")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/", "big.bin", "small.txt"}, names(out))

	out, err = w.execute(t, "ls", "--all", "--size", "a:/")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/", "small.txt", "big.bin", ".hidden"}, names(out))

	_, err = w.execute(t, "ls", "a:/missing")
	require.Error(t, err)
	assert.Equal(t, errors.CodeBackend, errors.GetCode(err))

	_, err = w.execute(t, "ls", "nomount:/")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestCopyMoveDelete(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, w.a, "docs/one.txt", "one")
	w.write(t, w.a, "docs/deep/two.txt", "two")
	w.write(t, w.a, "note.txt", "note")

	_, err := w.execute(t, "copy", "a:/docs", "a:/note.txt", "b:/")
	require.NoError(t, err)
	assert.Equal(t, "one", w.read(t, w.b, "docs/one.txt"))
	assert.Equal(t, "two", w.read(t, w.b, "docs/deep/two.txt"))
	assert.Equal(t, "note", w.read(t, w.b, "note.txt"))
	assert.FileExists(t, filepath.Join(w.a, "note.txt"))

	_, err = w.execute(t, "move", "b:/note.txt", "b:/docs")
	require.NoError(t, err)
	assert.Equal(t, "note", w.read(t, w.b, "docs/note.txt"))
	assert.NoFileExists(t, filepath.Join(w.b, "note.txt"))

	_, err = w.execute(t, "delete", "b:/docs")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(w.b, "docs"))

	_, err = w.execute(t, "rm", "a:/note.txt")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(w.a, "note.txt"))
}

func TestDelete_Pattern(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, w.a, "logs/1.log", "1")
	w.write(t, w.a, "logs/2.log", "2")
	w.write(t, w.a, "logs/keep.txt", "k")

	_, err := w.execute(t, "delete", "a:/logs/*.log")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(w.a, "logs", "1.log"))
	assert.NoFileExists(t, filepath.Join(w.a, "logs", "2.log"))
	assert.FileExists(t, filepath.Join(w.a, "logs", "keep.txt"))

	_, err = w.execute(t, "delete", "a:/logs/*.log")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestSelectionErrors(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, w.a, "x.txt", "x")
	w.write(t, w.a, "sub/y.txt", "y")

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"mount root", []string{"delete", "a:/"}, errors.CodeInvalidInput},
		{"different directories", []string{"delete", "a:/x.txt", "a:/sub/y.txt"}, errors.CodeInvalidInput},
		{"missing entry", []string{"delete", "a:/nope.txt"}, errors.CodeNotFound},
		{"no mount prefix", []string{"delete", "x.txt"}, errors.CodeInvalidInput},
		{"copy into same directory", []string{"copy", "a:/x.txt", "a:/"}, errors.CodeNameConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
	assert.FileExists(t, filepath.Join(w.a, "x.txt"))
}

func TestZipUnzip(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, w.a, "proj/main.go", "package main")
	w.write(t, w.a, "proj/lib/util.go", "package lib")

	out, err := w.execute(t, "zip", "a:/proj")
	require.NoError(t, err)
	assert.Equal(t, "a:/proj.zip\n", out)
	assert.FileExists(t, filepath.Join(w.a, "proj.zip"))

	_, err = w.execute(t, "unzip", "a:/proj.zip", "-d", "b:/out")
	require.NoError(t, err)
	assert.Equal(t, "package main", w.read(t, w.b, "out/proj/main.go"))
	assert.Equal(t, "package lib", w.read(t, w.b, "out/proj/lib/util.go"))

	out, err = w.execute(t, "zip", "-o", "bundle", "a:/proj")
	require.NoError(t, err)
	assert.Equal(t, "a:/bundle.zip\n", out)
}

func TestLs_ZipFirstMember(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, w.a, "proj/main.go", "package main")
	w.write(t, w.a, "broken.zip", "not an archive")

	_, err := w.execute(t, "zip", "-o", "bundle", "a:/proj")
	require.NoError(t, err)

	out, err := w.execute(t, "ls", "a:/")
	require.NoError(t, err)

	tests := []struct {
		name string
		want string
	}{
		{name: "archive shows first member", want: "bundle.zip -> proj/main.go"},
		{name: "unreadable archive listed plainly", want: "broken.zip\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestHash(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, w.a, "hello.txt", "hello")

	sum := sha256.Sum256([]byte("hello"))
	out, err := w.execute(t, "hash", "a:/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(sum[:])+"  a:/hello.txt\n", out)

	out, err = w.execute(t, "hash", "--algo", "crc32", "a:hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "3610a686  a:hello.txt\n", out)

	_, err = w.execute(t, "hash", "--algo", "blake3", "a:/hello.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestUpload_NoLocations(t *testing.T) {
	w := newWorkspace(t)
	w.write(t, w.a, "x.txt", "x")

	_, err := w.execute(t, "upload", "a:/x.txt")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}
