package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/pipedeck/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug)

	logger.Info("action started",
		"argv", []string{"login", "alice", "--password", "hunter2"},
		"password", "hunter2",
		"error", errors.New("boom"),
	)

	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "err=boom")
}

func TestRedactArgv(t *testing.T) {
	argv := []string{"encrypt-local", "a", "b", "--password", "s3cret"}
	got := logging.RedactArgv(argv)

	assert.Equal(t, []string{"encrypt-local", "a", "b", "--password", "****"}, got)
	assert.Equal(t, "s3cret", argv[4], "input must not be modified")

	// A trailing flag with no value is left alone.
	assert.Equal(t, []string{"x", "--password"}, logging.RedactArgv([]string{"x", "--password"}))
}

func TestParseLevel(t *testing.T) {
	level, err := logging.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = logging.ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	_, err = logging.ParseLevel("loud")
	assert.Error(t, err)
}
