package mirror

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNeedsUpdate(t *testing.T) {
	cases := []struct {
		name         string
		sourceTime   int64
		targetTime   int64
		targetExists bool
		expect       bool
	}{
		{"TargetMissing", 2000, 0, false, true},
		{"SourceNewer", 3000, 2000, true, true},
		{"EqualTimes", 2000, 2000, true, false},
		{"SourceOlder", 1000, 2000, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			source := filepath.Join(dir, "source.txt")
			target := filepath.Join(dir, "target.txt")
			require.NoError(t, os.WriteFile(source, []byte("s"), 0o644))
			require.NoError(t, os.Chtimes(source, time.Unix(tc.sourceTime, 0), time.Unix(tc.sourceTime, 0)))
			if tc.targetExists {
				require.NoError(t, os.WriteFile(target, []byte("s"), 0o644))
				require.NoError(t, os.Chtimes(target, time.Unix(tc.targetTime, 0), time.Unix(tc.targetTime, 0)))
			}

			got, err := NeedsUpdate(source, target)
			require.NoError(t, err)
			require.Equal(t, tc.expect, got)
		})
	}
}

func TestNeedsUpdateMissingSource(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("t"), 0o644))

	_, err := NeedsUpdate(filepath.Join(dir, "gone.txt"), target)
	require.Error(t, err)
}
