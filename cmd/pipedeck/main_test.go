package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/pipedeck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pipedeck version "+strings.TrimSpace(pipedeck.Version)+"\n", out)
}

func TestUploadsCommand(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "uploads.json")
	records := `{"local_path":"/tmp/a.txt","remote_path":"a.txt","status":"SUCCESS","message":"ok","blake3_hash":"Hh","file_size":3,"timestamp":"2026-01-01T00:00:00Z"}
{"local_path":"/tmp/b.txt","remote_path":"b.txt","status":"SUCCESS","message":"ok","blake3_hash":"Zz","file_size":5,"timestamp":"2026-02-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(logPath, []byte(records+"\n"), 0o644))

	cfgPath := filepath.Join(dir, "pipedeck.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("uploads_log: "+logPath+"\n"), 0o644))

	out, err := execute(t, "uploads", "--config", cfgPath)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "b.txt"), strings.Index(out, "a.txt"), "newest first")

	out, err = execute(t, "uploads", "hh", "--config", cfgPath, "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out, "hash search is case-sensitive")
}

func TestUnknownCommandFails(t *testing.T) {
	_, err := execute(t, "reboot")
	assert.Error(t, err)
}
