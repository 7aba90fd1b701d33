package fstest

import (
	"errors"
	"testing"
	"time"

	"github.com/jmgilman/go/xfer/fs/core"
)

// TestTimestamp checks the optional core.Timestamper capability.
func TestTimestamp(t *testing.T, b core.Backend, config Config) {
	ts, ok := b.(core.Timestamper)
	if !ok {
		t.Skip("backend does not implement core.Timestamper")
	}
	p := core.Join(b.Root(), "dir", "b.txt")

	run(t, config, "Timestamp", "Read", func(t *testing.T) {
		stamp, err := ts.Timestamp(p)
		if err != nil {
			t.Fatalf("Timestamp(%s): %v", p, err)
		}
		if stamp.Modified.IsZero() && !config.ReadOnly {
			t.Errorf("Timestamp(%s).Modified is zero", p)
		}
	})

	if config.ReadOnly {
		return
	}

	run(t, config, "Timestamp", "SetAndRead", func(t *testing.T) {
		want := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
		err := ts.SetTimestamp(p, core.Timestamp{Modified: want})
		if errors.Is(err, core.ErrUnsupported) {
			t.Skip("backend cannot set timestamps")
		}
		if err != nil {
			t.Fatalf("SetTimestamp(%s): %v", p, err)
		}
		got, err := ts.Timestamp(p)
		if err != nil {
			t.Fatalf("Timestamp(%s): %v", p, err)
		}
		if !got.Modified.Truncate(time.Second).Equal(want) {
			t.Errorf("Modified = %v, want %v", got.Modified, want)
		}
	})
}
