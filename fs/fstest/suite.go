// Package fstest provides a conformance test suite for core.Backend
// implementations.
//
// Backend packages import it from their tests and run the suite against a
// fresh backend per group:
//
//	func TestConformance(t *testing.T) {
//	    fstest.TestSuite(t, func() core.Backend {
//	        return billy.NewMemory()
//	    })
//	}
//
// Read-only backends cannot be populated through the Backend interface, so
// they must come pre-loaded with FixtureFS and run with ReadOnlyConfig.
package fstest

import (
	"testing"

	"github.com/jmgilman/go/xfer/fs/core"
)

// Config describes behavioral differences the suite should tolerate.
type Config struct {
	// ReadOnly indicates every mutation fails with core.ErrReadOnly. The
	// backend must already contain FixtureFS.
	ReadOnly bool

	// ImplicitParentDirs indicates Create succeeds without an existing
	// parent directory (object stores).
	ImplicitParentDirs bool

	// SkipTests lists group or "Group/Sub" names to skip.
	SkipTests []string
}

// POSIXConfig returns the configuration for disk and memory backends.
func POSIXConfig() Config {
	return Config{}
}

// ObjectStoreConfig returns the configuration for S3-like backends.
func ObjectStoreConfig() Config {
	return Config{ImplicitParentDirs: true}
}

// ReadOnlyConfig returns the configuration for image mounts.
func ReadOnlyConfig() Config {
	return Config{ReadOnly: true}
}

// TestSuite runs the suite with POSIXConfig.
func TestSuite(t *testing.T, newFS func() core.Backend) {
	TestSuiteWithConfig(t, newFS, POSIXConfig())
}

// TestSuiteWithConfig runs every group against a fresh backend from newFS.
func TestSuiteWithConfig(t *testing.T, newFS func() core.Backend, config Config) {
	groups := []struct {
		name string
		run  func(*testing.T, core.Backend, Config)
	}{
		{"List", TestList},
		{"Read", TestRead},
		{"Write", TestWrite},
		{"Manage", TestManage},
		{"Timestamp", TestTimestamp},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if config.skip(g.name) {
				t.Skip("Skipped by provider configuration")
			}
			b := newFS()
			if !config.ReadOnly {
				Populate(t, b)
			}
			g.run(t, b, config)
		})
	}
}

func (c Config) skip(name string) bool {
	for _, s := range c.SkipTests {
		if s == name {
			return true
		}
	}
	return false
}

// run executes a named subtest unless the config skips it.
func run(t *testing.T, config Config, group, name string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if config.skip(group + "/" + name) {
			t.Skip("Skipped by provider configuration")
		}
		fn(t)
	})
}
