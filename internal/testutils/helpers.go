package testutils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// FakeTool writes a /bin/sh script that stands in for the external tool and
// returns its absolute path. The script receives the subcommand and flags as
// "$@". Tests using it are skipped on Windows.
func FakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}

	path := filepath.Join(t.TempDir(), "pipe")
	body := "#!/bin/sh\n" + script + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755), "Failed to write fake tool")
	return path
}

// Missing returns a path inside a fresh temp dir that does not exist.
func Missing(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "no-such-tool")
}
