package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aretw0/pipedeck/pkg/config"
	"github.com/aretw0/pipedeck/pkg/progress"
	"github.com/aretw0/pipedeck/pkg/status"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Source is a run the follower can poll. *runner.Run implements it.
type Source interface {
	Snapshot() *status.Snapshot
	Done() <-chan struct{}
}

// Follower polls a run and mirrors its status buffer to a writer.
//
// Plain lines are printed once, in order. On a terminal the progress line is
// redrawn in place; elsewhere each new progress value gets its own line.
type Follower struct {
	out      *termenv.Output
	interval time.Duration
	tty      bool

	printed  int    // plain lines already written
	progress string // progress line currently shown
	drawn    bool   // a progress line occupies the cursor row
}

// FollowOption configures a Follower.
type FollowOption func(*Follower)

// WithInterval sets the polling tick.
func WithInterval(d time.Duration) FollowOption {
	return func(f *Follower) {
		if d > 0 {
			f.interval = d
		}
	}
}

// WithTTY forces terminal behavior on or off.
func WithTTY(tty bool) FollowOption {
	return func(f *Follower) {
		f.tty = tty
	}
}

// NewFollower creates a Follower writing to w. Terminal behavior is detected
// from w unless WithTTY overrides it.
func NewFollower(w io.Writer, opts ...FollowOption) *Follower {
	f := &Follower{
		interval: config.DefaultPollInterval,
		tty:      IsTerminal(w),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.tty {
		f.out = termenv.NewOutput(w)
	} else {
		f.out = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	return f
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Follow prints the run's status until it completes or ctx is done, and
// returns the final snapshot.
func (f *Follower) Follow(ctx context.Context, src Source) (*status.Snapshot, error) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	done := src.Done()
	for {
		snap := src.Snapshot()
		f.render(snap)
		if snap.Done {
			f.finish()
			return snap, nil
		}

		select {
		case <-ctx.Done():
			f.finish()
			return snap, ctx.Err()
		case <-done:
			done = nil
		case <-ticker.C:
		}
	}
}

func (f *Follower) render(snap *status.Snapshot) {
	var plain []string
	current := ""
	for _, l := range snap.Lines {
		if progress.IsProgress(l) {
			current = l
			continue
		}
		plain = append(plain, l)
	}
	if len(plain) < f.printed {
		f.printed = len(plain)
	}

	fresh := plain[f.printed:]
	if len(fresh) > 0 && f.drawn {
		f.clear()
	}
	for _, l := range fresh {
		fmt.Fprintln(f.out, f.style(l))
	}
	f.printed = len(plain)

	if current == "" || (current == f.progress && (f.drawn || !f.tty)) {
		return
	}
	f.progress = current
	if f.tty {
		f.clear()
		fmt.Fprint(f.out, f.out.String(current).Foreground(f.out.Color("6")))
		f.drawn = true
		return
	}
	fmt.Fprintln(f.out, current)
}

func (f *Follower) clear() {
	if !f.tty {
		return
	}
	fmt.Fprint(f.out, "\r")
	f.out.ClearLine()
	f.drawn = false
}

// finish moves past a drawn progress line so later output starts clean.
func (f *Follower) finish() {
	if f.drawn {
		fmt.Fprintln(f.out)
		f.drawn = false
	}
}

func (f *Follower) style(line string) termenv.Style {
	s := f.out.String(line)
	switch {
	case strings.HasPrefix(line, "✅"):
		return s.Foreground(f.out.Color("2"))
	case strings.HasPrefix(line, "❌"):
		return s.Foreground(f.out.Color("1"))
	case strings.HasPrefix(line, "⏹"):
		return s.Foreground(f.out.Color("3"))
	}
	return s
}
