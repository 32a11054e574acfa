package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/pipedeck/internal/presentation/tui"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/runner"
	"github.com/aretw0/pipedeck/pkg/status"
)

// DefaultSlot is the slot CLI commands run in.
const DefaultSlot = "cli"

// ErrActionFailed is returned when a followed run does not succeed.
var ErrActionFailed = errors.New("action failed")

// Trigger is the part of the Deck RunAction drives.
type Trigger interface {
	Trigger(ctx context.Context, slot string, kind domain.ActionKind, params map[string]any) (*runner.Run, error)
}

// RunOptions describes one foreground action.
type RunOptions struct {
	Kind     domain.ActionKind
	Params   map[string]any
	Slot     string
	Interval time.Duration
	Out      io.Writer
	// TTY overrides terminal detection of Out when set.
	TTY *bool
}

// RunAction triggers an action, follows it to completion and renders any
// extracted result. An interrupt cancels the run and waits for it to settle.
func RunAction(ctx context.Context, deck Trigger, opts RunOptions) (*status.Snapshot, error) {
	slot := opts.Slot
	if slot == "" {
		slot = DefaultSlot
	}

	run, err := deck.Trigger(ctx, slot, opts.Kind, opts.Params)
	if err != nil {
		return nil, err
	}

	tty := IsTerminal(opts.Out)
	if opts.TTY != nil {
		tty = *opts.TTY
	}
	follower := NewFollower(opts.Out, WithInterval(opts.Interval), WithTTY(tty))

	snap, err := follower.Follow(ctx, run)
	if err != nil && ctx.Err() != nil {
		run.Cancel()
		waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if final, werr := run.Wait(waitCtx); werr == nil {
			follower.render(final)
			follower.finish()
			snap = final
		}
		printSystemMessage(opts.Out, "Interrupted.")
		return snap, err
	}
	if err != nil {
		return snap, err
	}

	if md := tui.Result(snap.Result); md != "" {
		rendered, rerr := tui.NewRenderer(tty)(md)
		if rerr != nil {
			rendered = md
		}
		fmt.Fprint(opts.Out, rendered)
	}

	if snap.Phase != domain.PhaseSuccess {
		return snap, fmt.Errorf("%w: %s (%s, exit code %d)", ErrActionFailed, opts.Kind.Label(), snap.Phase, snap.ExitCode)
	}
	return snap, nil
}
