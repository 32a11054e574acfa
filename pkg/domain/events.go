package domain

import (
	"context"
	"time"
)

// RunEvent describes a lifecycle transition of one run.
type RunEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	RunID     string     `json:"run_id"`
	Slot      string     `json:"slot,omitempty"`
	Kind      ActionKind `json:"kind"`
}

// ProgressEvent carries the latest progress value of a transfer.
type ProgressEvent struct {
	RunEvent
	Value string `json:"value"`
}

// LifecycleHooks defines callbacks for run observability.
// Hooks are invoked from the goroutine that owns the run and must not block.
type LifecycleHooks struct {
	OnStart    func(context.Context, *RunEvent)
	OnProgress func(context.Context, *ProgressEvent)
	OnComplete func(context.Context, *Outcome)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStart: func(ctx context.Context, e *RunEvent) {
			if h.OnStart != nil {
				h.OnStart(ctx, e)
			}
			if other.OnStart != nil {
				other.OnStart(ctx, e)
			}
		},
		OnProgress: func(ctx context.Context, e *ProgressEvent) {
			if h.OnProgress != nil {
				h.OnProgress(ctx, e)
			}
			if other.OnProgress != nil {
				other.OnProgress(ctx, e)
			}
		},
		OnComplete: func(ctx context.Context, o *Outcome) {
			if h.OnComplete != nil {
				h.OnComplete(ctx, o)
			}
			if other.OnComplete != nil {
				other.OnComplete(ctx, o)
			}
		},
	}
}
