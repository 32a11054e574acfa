// Package status holds the live, poll-readable state of a single run.
//
// A Store has exactly one writer (the goroutine that owns the run) and any
// number of readers. Every mutation publishes a fresh immutable Snapshot
// through an atomic pointer, so readers never take a lock and never observe a
// partially written line.
package status

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/progress"
)

// Snapshot is an immutable view of a run's status buffer.
// Slices in a snapshot must not be modified by readers.
type Snapshot struct {
	Lines    []string                `json:"lines"`
	Phase    domain.Phase            `json:"phase"`
	Done     bool                    `json:"done"`
	Result   *domain.ExtractedResult `json:"result,omitempty"`
	ExitCode int                     `json:"exit_code"`
	Error    string                  `json:"error,omitempty"`
	// Seq increases with every published change.
	Seq uint64 `json:"seq"`
}

// Text joins the status lines with newlines.
func (s *Snapshot) Text() string {
	return strings.Join(s.Lines, "\n")
}

// Progress returns the current progress value, if any.
func (s *Snapshot) Progress() (string, bool) {
	for _, l := range s.Lines {
		if progress.IsProgress(l) {
			return progress.Value(l), true
		}
	}
	return "", false
}

// Last returns the final status line, or "" when the buffer is empty.
func (s *Snapshot) Last() string {
	if len(s.Lines) == 0 {
		return ""
	}
	return s.Lines[len(s.Lines)-1]
}

// Store is the status buffer and completion flag of one run.
type Store struct {
	cur atomic.Pointer[Snapshot]

	mu    sync.Mutex // serializes writers
	lines []string
	next  Snapshot

	once sync.Once
	done chan struct{}
}

// New returns an idle store.
func New() *Store {
	s := &Store{
		next: Snapshot{Phase: domain.PhaseIdle},
		done: make(chan struct{}),
	}
	s.publishLocked()
	return s
}

// Snapshot returns the latest published state. It never blocks.
func (s *Store) Snapshot() *Snapshot {
	return s.cur.Load()
}

// Append adds a plain line. Blank lines are ignored.
func (s *Store) Append(line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next.Done {
		return domain.ErrAlreadyComplete
	}
	s.lines = append(s.lines, line)
	s.publishLocked()
	return nil
}

// ReplaceProgress removes every progress line and appends one with value.
func (s *Store) ReplaceProgress(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next.Done {
		return domain.ErrAlreadyComplete
	}

	// Published snapshots share the backing array, so filter into a new one.
	kept := make([]string, 0, len(s.lines)+1)
	for _, l := range s.lines {
		if !progress.IsProgress(l) {
			kept = append(kept, l)
		}
	}
	s.lines = append(kept, progress.Format(value))
	s.publishLocked()
	return nil
}

// SetPhase records a non-terminal phase transition.
func (s *Store) SetPhase(p domain.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next.Done {
		return domain.ErrAlreadyComplete
	}
	s.next.Phase = p
	s.publishLocked()
	return nil
}

// Complete settles the run and sets the completion flag. Only the first call
// has any effect; later calls return domain.ErrAlreadyComplete.
func (s *Store) Complete(phase domain.Phase, result *domain.ExtractedResult, exitCode int, errText string) error {
	err := domain.ErrAlreadyComplete
	s.once.Do(func() {
		s.mu.Lock()
		s.next.Phase = phase
		s.next.Result = result
		s.next.ExitCode = exitCode
		s.next.Error = errText
		s.next.Done = true
		s.publishLocked()
		s.mu.Unlock()

		close(s.done)
		err = nil
	})
	return err
}

// Done is closed once the run is complete.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// IsDone reports the completion flag.
func (s *Store) IsDone() bool {
	return s.cur.Load().Done
}

// Wait blocks until the run completes or ctx is done, then returns the latest snapshot.
func (s *Store) Wait(ctx context.Context) (*Snapshot, error) {
	select {
	case <-s.done:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

func (s *Store) publishLocked() {
	snap := s.next
	n := len(s.lines)
	snap.Lines = s.lines[:n:n]
	snap.Seq++
	s.next.Seq = snap.Seq
	s.cur.Store(&snap)
}
