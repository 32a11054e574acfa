package uploads

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/pipedeck/internal/logging"
	"github.com/aretw0/pipedeck/pkg/domain"
)

// FileName is the upload log written by the external tool in the user's home.
const FileName = ".pipe-cli-uploads.json"

// maxRecordSize bounds one JSONL record.
const maxRecordSize = 1 << 20

// DefaultPath returns the upload log location: USERPROFILE, then HOME, then
// the working directory.
func DefaultPath() string {
	home := os.Getenv("USERPROFILE")
	if home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		home = "."
	}
	return filepath.Join(home, FileName)
}

// Order selects how records are sorted.
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

// Log reads the upload log. It holds no state between calls: every read sees
// what the tool has written so far.
type Log struct {
	path   string
	logger *slog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithLogger reports malformed records.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// New creates a Log reading path; an empty path means DefaultPath.
func New(path string, opts ...Option) *Log {
	if path == "" {
		path = DefaultPath()
	}
	l := &Log{path: path, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the file this Log reads.
func (l *Log) Path() string {
	return l.path
}

// Load returns every record, newest first. A missing file is an empty list.
func (l *Log) Load(ctx context.Context) ([]domain.UploadRecord, error) {
	return l.LoadOrdered(ctx, NewestFirst)
}

// LoadOrdered is Load with an explicit sort order.
func (l *Log) LoadOrdered(ctx context.Context, order Order) ([]domain.UploadRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.UploadRecord{}, nil
		}
		return nil, fmt.Errorf("failed to open upload log: %w", err)
	}
	defer f.Close()

	records, err := l.parse(ctx, f)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(records, func(a, b domain.UploadRecord) int {
		if order == OldestFirst {
			return a.Timestamp.Compare(b.Timestamp)
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
	return records, nil
}

func (l *Log) parse(ctx context.Context, r io.Reader) ([]domain.UploadRecord, error) {
	records := []domain.UploadRecord{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	lineNo := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec domain.UploadRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			l.logger.Warn("skipping malformed upload record", "path", l.path, "line", lineNo, "err", err)
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read upload log: %w", err)
	}
	return records, nil
}

// Exists reports whether some record has the given remote name.
// Surrounding whitespace is ignored.
func (l *Log) Exists(ctx context.Context, remote string) (bool, error) {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return false, nil
	}
	records, err := l.Load(ctx)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(records, func(r domain.UploadRecord) bool {
		return r.RemotePath == remote
	}), nil
}

// RequireRemote returns domain.ErrRemoteNotFound unless remote is in the log.
func (l *Log) RequireRemote(ctx context.Context, remote string) error {
	ok, err := l.Exists(ctx, remote)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrRemoteNotFound, strings.TrimSpace(remote))
	}
	return nil
}

// Search returns the records matching term, newest first. An empty term
// matches everything.
func (l *Log) Search(ctx context.Context, term string) ([]domain.UploadRecord, error) {
	records, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(records, term), nil
}

// Filter keeps the records matching term. Local path, remote path, status and
// message match case-insensitively; the hash matches case-sensitively.
func Filter(records []domain.UploadRecord, term string) []domain.UploadRecord {
	if term == "" {
		return records
	}
	lower := strings.ToLower(term)
	out := make([]domain.UploadRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.LocalPath), lower) ||
			strings.Contains(strings.ToLower(r.RemotePath), lower) ||
			strings.Contains(strings.ToLower(r.Status), lower) ||
			strings.Contains(strings.ToLower(r.Message), lower) ||
			strings.Contains(r.Blake3Hash, term) {
			out = append(out, r)
		}
	}
	return out
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with one decimal above 1 KB.
func FormatSize(size uint64) string {
	f := float64(size)
	i := 0
	for f >= 1024 && i < len(sizeUnits)-1 {
		f /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d %s", size, sizeUnits[0])
	}
	return fmt.Sprintf("%.1f %s", f, sizeUnits[i])
}
