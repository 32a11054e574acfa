package process_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/pipedeck/internal/testutils"
	"github.com/aretw0/pipedeck/pkg/adapters/process"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLauncher_PassesArgvAndEnv(t *testing.T) {
	exe := testutils.FakeTool(t, `echo "args:$*"; echo "env:$PIPE_TEST_VALUE" 1>&2; exit 3`)

	l := process.NewLauncher(
		process.WithExecutable(exe),
		process.WithBaseArgs("--config", "/tmp/cfg"),
		process.WithEnv(map[string]string{"PIPE_TEST_VALUE": "hello"}),
	)
	req := domain.ActionRequest{
		Kind:     domain.ActionLogin,
		Command:  "login",
		Args:     []string{"ana"},
		Endpoint: "https://api.test",
		Secrets:  []domain.Secret{{Flag: "--password", Value: "pw"}},
	}

	child, err := l.Start(context.Background(), req)
	require.NoError(t, err)
	assert.NotZero(t, child.PID())

	out, err := io.ReadAll(child.Stdout())
	require.NoError(t, err)
	errOut, err := io.ReadAll(child.Stderr())
	require.NoError(t, err)

	code, err := child.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, "args:--config /tmp/cfg login ana --api https://api.test --password pw\n", string(out))
	assert.Equal(t, "env:hello\n", string(errOut))
}

func TestLauncher_StdinDetached(t *testing.T) {
	exe := testutils.FakeTool(t, `if read line; then echo "got:$line"; else echo "eof"; fi`)

	child, err := process.NewLauncher(process.WithExecutable(exe)).Start(context.Background(), domain.ActionRequest{Command: "login"})
	require.NoError(t, err)
	out, _ := io.ReadAll(child.Stdout())
	_, _ = io.ReadAll(child.Stderr())
	_, err = child.Wait()
	require.NoError(t, err)
	assert.Equal(t, "eof\n", string(out))
}

func TestLauncher_SpawnErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		l := process.NewLauncher(process.WithExecutable(testutils.Missing(t)))
		_, err := l.Start(context.Background(), domain.ActionRequest{Command: "check-sol"})

		var spawnErr *domain.SpawnError
		require.ErrorAs(t, err, &spawnErr)
		assert.Equal(t, domain.SpawnNotFound, spawnErr.Reason)
	})

	t.Run("not in PATH", func(t *testing.T) {
		l := process.NewLauncher(process.WithExecutable("pipedeck-no-such-tool-7f3a"))
		_, err := l.Start(context.Background(), domain.ActionRequest{Command: "check-sol"})

		var spawnErr *domain.SpawnError
		require.ErrorAs(t, err, &spawnErr)
		assert.Equal(t, domain.SpawnNotFound, spawnErr.Reason)
	})

	t.Run("not executable", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("execute permission bits are a unix concept")
		}
		path := filepath.Join(t.TempDir(), "pipe")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho hi\n"), 0o644))

		_, err := process.NewLauncher(process.WithExecutable(path)).Start(context.Background(), domain.ActionRequest{Command: "check-sol"})
		var spawnErr *domain.SpawnError
		require.ErrorAs(t, err, &spawnErr)
		assert.Equal(t, domain.SpawnPermissionDenied, spawnErr.Reason)
	})
}

func TestLauncher_CloseUnblocksReaders(t *testing.T) {
	// The grandchild keeps stdout open long after the tool is killed.
	exe := testutils.FakeTool(t, `sleep 5 & echo started; wait`)

	ctx, cancel := context.WithCancel(context.Background())
	child, err := process.NewLauncher(process.WithExecutable(exe), process.WithWaitDelay(100*time.Millisecond)).
		Start(ctx, domain.ActionRequest{Command: "upload-file"})
	require.NoError(t, err)

	buf := make([]byte, 8)
	n, err := child.Stdout().Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "started\n", string(buf[:n]))

	done := make(chan struct{})
	go func() {
		_, _ = io.ReadAll(child.Stdout())
		close(done)
	}()

	cancel()
	require.NoError(t, child.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reader still blocked after Close")
	}

	code, err := child.Wait()
	require.NoError(t, err)
	assert.Equal(t, -1, code, "killed by signal")
}
