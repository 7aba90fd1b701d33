package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/xfer/errors"
	"github.com/jmgilman/go/xfer/logging"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 1<<20, cfg.Engine.ChunkSize)
	assert.Equal(t, "100us", cfg.Engine.DeleteThrottle)
	assert.Equal(t, int64(4<<20), cfg.Engine.MultiThreadThreshold)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, 100000, cfg.Engine.Extract.MaxFiles)
	assert.Equal(t, int64(64<<30), cfg.Engine.Extract.MaxSize)
	assert.Equal(t, int64(32<<30), cfg.Engine.Extract.MaxFileSize)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Empty(t, cfg.Mounts)
	assert.Empty(t, cfg.Locations)
	assert.Len(t, cfg.EngineOptions(), 5)
}

const fullConfig = `
log:
  level: debug
  format: json
engine:
  chunk_size: 65536
  delete_throttle: 1ms
  workers: 8
metrics:
  addr: ":9090"
mounts:
  - name: sd
    kind: native
    dir: /srv/sd
    root: "sdmc:/"
  - name: usb
    kind: removable
    dir: /media/usb
  - name: scratch
    kind: memory
  - name: nand
    kind: image
    file: /srv/nand.zip
  - name: share
    kind: minio
    endpoint: localhost:9000
    bucket: share
    access_key: key
    secret_key: secret
locations:
  - name: dav
    kind: http
    url: https://dav.example.com/files
    username: me
  - name: bucket
    kind: s3
    bucket: backups
    prefix: switch
`

func TestParse_Full(t *testing.T) {
	cfg, err := Parse(context.Background(), []byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, 65536, cfg.Engine.ChunkSize)
	assert.Equal(t, "1ms", cfg.Engine.DeleteThrottle)
	assert.Equal(t, 8, cfg.Engine.Workers)
	assert.Equal(t, int64(4<<20), cfg.Engine.MultiThreadThreshold)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)

	require.Len(t, cfg.Mounts, 5)
	assert.Equal(t, "sdmc:/", cfg.Mounts[0].RootPath())
	assert.Equal(t, "usb:/", cfg.Mounts[1].RootPath())
	assert.Equal(t, "/srv/nand.zip", cfg.Mounts[3].File)
	assert.Equal(t, "share", cfg.Mounts[4].Bucket)
	assert.False(t, cfg.Mounts[4].UseSSL)

	require.Len(t, cfg.Locations, 2)
	assert.Equal(t, "me", cfg.Locations[0].Username)
	assert.Equal(t, "us-east-1", cfg.Locations[1].Region)
	assert.Equal(t, "switch", cfg.Locations[1].Prefix)

	lc, err := cfg.LoggerConfig()
	require.NoError(t, err)
	assert.Equal(t, logging.LogLevelDebug, lc.Level)
	assert.True(t, lc.JSON)

	loc, err := cfg.Location("bucket")
	require.NoError(t, err)
	assert.Equal(t, "s3", loc.Kind)
	_, err = cfg.Location("nope")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		issue bool
	}{
		{name: "malformed yaml", yaml: "log: [unclosed"},
		{name: "unknown field", yaml: "colour: blue", issue: true},
		{name: "bad level", yaml: "log:\n  level: loud", issue: true},
		{name: "zero workers", yaml: "engine:\n  workers: 0", issue: true},
		{name: "bad throttle", yaml: "engine:\n  delete_throttle: soon", issue: true},
		{name: "unknown mount kind", yaml: "mounts:\n  - name: x\n    kind: floppy", issue: true},
		{name: "native without dir", yaml: "mounts:\n  - name: x\n    kind: native", issue: true},
		{name: "memory with dir", yaml: "mounts:\n  - name: x\n    kind: memory\n    dir: /tmp", issue: true},
		{name: "bad mount name", yaml: "mounts:\n  - name: X!\n    kind: memory", issue: true},
		{name: "http without url", yaml: "locations:\n  - name: x\n    kind: http", issue: true},
		{name: "duplicate mount", yaml: "mounts:\n  - name: x\n    kind: memory\n  - name: x\n    kind: memory"},
		{
			name: "shared root",
			yaml: "mounts:\n  - name: x\n    kind: memory\n  - name: y\n    kind: memory\n    root: \"x:/\"",
		},
		{
			name: "duplicate location",
			yaml: "locations:\n  - name: a\n    kind: http\n    url: http://h\n  - name: a\n    kind: http\n    url: http://h",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), []byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
			if tt.issue {
				assert.NotEmpty(t, Issues(err))
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xfer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  workers: 2\n"), 0o600))

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Engine.Workers)

	_, err = Load(context.Background(), filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))

	require.NoError(t, os.WriteFile(path, []byte("engine:\n  workers: -1\n"), 0o600))
	_, err = Load(context.Background(), path)
	require.Error(t, err)
	var te errors.TransferError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, path, te.Context()["path"])
	assert.NotEmpty(t, Issues(err))
}
