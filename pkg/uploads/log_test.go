package uploads_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/pipedeck/internal/logging"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/uploads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{"local_path":"/home/a/Report.pdf","remote_path":"report.pdf","status":"SUCCESS","message":"ok","blake3_hash":"AbC123","file_size":2048,"timestamp":"2026-01-01T10:00:00Z"}

{"local_path":"/home/a/cat.png","remote_path":"cat.png","status":"FAILED","message":"Network timeout","blake3_hash":"ff00","file_size":10,"timestamp":"2026-03-01T10:00:00Z"}
not json at all
{"local_path":"/home/a/notes.txt","remote_path":"notes.txt","status":"SUCCESS","message":"ok","blake3_hash":"9999","file_size":1,"timestamp":"2026-02-01T10:00:00Z"}
`

func writeLog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), uploads.FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func remotes(records []domain.UploadRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.RemotePath)
	}
	return out
}

func TestLog_LoadSortsAndSkipsBadLines(t *testing.T) {
	var buf bytes.Buffer
	log := uploads.New(writeLog(t, sampleLog), uploads.WithLogger(logging.NewWithWriter(&buf, slog.LevelDebug)))

	records, err := log.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cat.png", "notes.txt", "report.pdf"}, remotes(records))
	assert.Equal(t, uint64(2048), records[2].FileSize)
	assert.Contains(t, buf.String(), "skipping malformed upload record")
	assert.Contains(t, buf.String(), "line=4")

	oldest, err := log.LoadOrdered(context.Background(), uploads.OldestFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{"report.pdf", "notes.txt", "cat.png"}, remotes(oldest))
}

func TestLog_MissingFileIsEmpty(t *testing.T) {
	log := uploads.New(filepath.Join(t.TempDir(), "absent.json"))
	records, err := log.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	ok, err := log.Exists(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLog_Search(t *testing.T) {
	log := uploads.New(writeLog(t, sampleLog))
	ctx := context.Background()

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"cat.png", "notes.txt", "report.pdf"}},
		{"REPORT", []string{"report.pdf"}},
		{"failed", []string{"cat.png"}},
		{"timeout", []string{"cat.png"}},
		{"AbC", []string{"report.pdf"}},
		{"abc", []string{}},
		{"/home/a", []string{"cat.png", "notes.txt", "report.pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := log.Search(ctx, tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, remotes(got))
		})
	}
}

func TestLog_RequireRemote(t *testing.T) {
	log := uploads.New(writeLog(t, sampleLog))
	ctx := context.Background()

	assert.NoError(t, log.RequireRemote(ctx, " notes.txt "))

	err := log.RequireRemote(ctx, "missing.bin")
	assert.ErrorIs(t, err, domain.ErrRemoteNotFound)
	assert.ErrorIs(t, log.RequireRemote(ctx, "  "), domain.ErrRemoteNotFound)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("USERPROFILE", "")
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, filepath.Join("/home/tester", uploads.FileName), uploads.DefaultPath())

	t.Setenv("USERPROFILE", `C:\Users\tester`)
	assert.True(t, strings.HasSuffix(uploads.DefaultPath(), uploads.FileName))
	assert.True(t, strings.HasPrefix(uploads.DefaultPath(), `C:\Users\tester`))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", uploads.FormatSize(512))
	assert.Equal(t, "2.0 KB", uploads.FormatSize(2048))
	assert.Equal(t, "1.5 MB", uploads.FormatSize(1536*1024))
}
