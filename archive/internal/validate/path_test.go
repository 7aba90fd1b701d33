package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePath(t *testing.T) {
	v := NewPathValidator()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "simple file", path: "a.txt"},
		{name: "nested", path: "dir/sub/c.bin"},
		{name: "directory entry", path: "dir/"},
		{name: "hidden allowed", path: "dir/.hidden"},
		{name: "unicode", path: "ゲーム/セーブ.dat"},
		{name: "dots inside name", path: "a..b.txt"},
		{name: "empty", path: "", wantErr: true},
		{name: "whitespace", path: "  \t", wantErr: true},
		{name: "absolute", path: "/etc/passwd", wantErr: true},
		{name: "backslash absolute", path: "\\windows", wantErr: true},
		{name: "drive letter", path: "C:/boot.ini", wantErr: true},
		{name: "mount prefix", path: "sdmc:/a", wantErr: true},
		{name: "parent", path: "../evil", wantErr: true},
		{name: "nested parent", path: "a/../../evil", wantErr: true},
		{name: "backslash parent", path: "a\\..\\evil", wantErr: true},
		{name: "encoded", path: "..%2fevil", wantErr: true},
		{name: "nul", path: "a\x00b", wantErr: true},
		{name: "control", path: "a\x07b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, v.IsPathSafe(tt.path))
			} else {
				assert.NoError(t, err)
				assert.True(t, v.IsPathSafe(tt.path))
			}
		})
	}
}

func TestValidatePath_HiddenRejected(t *testing.T) {
	v := &PathValidator{AllowHiddenFiles: false}
	assert.Error(t, v.ValidatePath("dir/.hidden"))
	assert.Error(t, v.ValidatePath(".git/config"))
	assert.NoError(t, v.ValidatePath("dir/visible"))
}
