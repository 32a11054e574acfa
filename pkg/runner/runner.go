package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/pipedeck/internal/logging"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/extract"
	"github.com/aretw0/pipedeck/pkg/ports"
	"github.com/aretw0/pipedeck/pkg/progress"
	"github.com/aretw0/pipedeck/pkg/status"
	"github.com/aretw0/pipedeck/pkg/stream"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// lineBuffer is the capacity of the channel between the stream readers and the owner.
const lineBuffer = 64

// Runner starts runs of the external tool. Each run is owned by exactly one
// background goroutine; a Runner itself holds no per-run state and may start
// any number of concurrent runs.
type Runner struct {
	launcher  ports.Launcher
	extractor *extract.Extractor
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	chunkSize int
	now       func() time.Time
	newID     func() string
}

// New creates a Runner that spawns processes through launcher.
func New(launcher ports.Launcher, opts ...Option) *Runner {
	r := &Runner{
		launcher:  launcher,
		extractor: extract.New(),
		logger:    logging.NewNop(),
		chunkSize: stream.DefaultChunkSize,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run is one ActionRequest in flight. All methods are safe for concurrent use.
type Run struct {
	ID        string
	Slot      string
	Request   domain.ActionRequest
	StartedAt time.Time

	store   *status.Store
	cancel  context.CancelFunc
	outcome atomic.Pointer[domain.Outcome]
}

// Snapshot returns the latest status without blocking.
func (r *Run) Snapshot() *status.Snapshot {
	return r.store.Snapshot()
}

// Done is closed when the run is complete.
func (r *Run) Done() <-chan struct{} {
	return r.store.Done()
}

// Wait blocks until the run completes or ctx is done.
func (r *Run) Wait(ctx context.Context) (*status.Snapshot, error) {
	return r.store.Wait(ctx)
}

// Cancel asks the run to stop. The child is killed and the run completes as
// cancelled, unless it already finished.
func (r *Run) Cancel() {
	r.cancel()
}

// Outcome returns the settled outcome, or nil while the run is in progress.
func (r *Run) Outcome() *domain.Outcome {
	return r.outcome.Load()
}

// Start launches req in the background and returns immediately.
//
// The run keeps the values of ctx but not its cancellation: it outlives the
// request that triggered it and stops only on Run.Cancel or process exit.
// Start never fails; spawn errors settle the run with PhaseSpawnError.
func (rn *Runner) Start(ctx context.Context, slot string, req domain.ActionRequest) *Run {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	run := &Run{
		ID:        rn.newID(),
		Slot:      slot,
		Request:   req,
		StartedAt: rn.now(),
		store:     status.New(),
		cancel:    cancel,
	}
	_ = run.store.SetPhase(domain.PhaseSpawning)

	go rn.own(runCtx, run)
	return run
}

// settlement is the single terminal action of a run.
type settlement struct {
	phase    domain.Phase
	line     string
	result   *domain.ExtractedResult
	exitCode int
	err      error
}

func (rn *Runner) own(ctx context.Context, run *Run) {
	defer run.cancel()

	kind := run.Request.Kind
	logger := rn.logger.With("run_id", run.ID, "slot", run.Slot, "kind", kind)
	event := domain.RunEvent{Timestamp: run.StartedAt, RunID: run.ID, Slot: run.Slot, Kind: kind}

	logger.Info("action started", "argv", run.Request.Redacted())
	if rn.hooks.OnStart != nil {
		rn.hooks.OnStart(ctx, &event)
	}

	s := rn.execute(ctx, run, logger, event)

	if s.line != "" {
		_ = run.store.Append(s.line)
	}
	errText := ""
	if s.err != nil {
		errText = s.err.Error()
	}

	finished := rn.now()
	outcome := &domain.Outcome{
		RunID:      run.ID,
		Slot:       run.Slot,
		Kind:       kind,
		Phase:      s.phase,
		ExitCode:   s.exitCode,
		Command:    run.Request.Redacted(),
		Lines:      run.store.Snapshot().Lines,
		Result:     s.result,
		Error:      errText,
		StartedAt:  run.StartedAt,
		FinishedAt: finished,
	}
	run.outcome.Store(outcome)

	if err := run.store.Complete(s.phase, s.result, s.exitCode, errText); err != nil {
		logger.Error("completion rejected", "error", err)
	}

	logger.Info("action finished",
		"phase", s.phase,
		"exit_code", s.exitCode,
		"duration", finished.Sub(run.StartedAt),
	)
	if rn.hooks.OnComplete != nil {
		rn.hooks.OnComplete(context.WithoutCancel(ctx), outcome)
	}
}

func (rn *Runner) execute(ctx context.Context, run *Run, logger *slog.Logger, event domain.RunEvent) settlement {
	kind := run.Request.Kind

	if ctx.Err() != nil {
		return cancelled(kind, -1)
	}

	child, err := rn.launcher.Start(ctx, run.Request)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(kind, -1)
		}
		logger.Error("spawn failed", "error", err)
		return settlement{
			phase:    domain.PhaseSpawnError,
			line:     fmt.Sprintf("❌ Failed to run CLI: %v", err),
			exitCode: -1,
			err:      err,
		}
	}
	logger.Debug("process spawned", "pid", child.PID())
	_ = run.store.SetPhase(domain.PhaseStreaming)

	// Closing the read ends unblocks readers when a grandchild holds the pipes open.
	stopClose := context.AfterFunc(ctx, func() { _ = child.Close() })
	defer stopClose()

	stdout, stderr := rn.pump(ctx, run, child, logger, event)

	code, waitErr := child.Wait()
	if ctx.Err() != nil && (code != 0 || waitErr != nil) {
		return cancelled(kind, code)
	}
	if waitErr != nil {
		return settlement{
			phase:    domain.PhaseFailed,
			line:     fmt.Sprintf("❌ %s failed: %v", kind.Label(), waitErr),
			exitCode: -1,
			err:      waitErr,
		}
	}
	if code != 0 {
		diag := strings.TrimSpace(stderr)
		if diag == "" {
			diag = strings.TrimSpace(stdout)
		}
		failure := &domain.RuntimeFailure{ExitCode: code, Diagnostic: diag}
		line := fmt.Sprintf("❌ %s failed: %s", kind.Label(), diag)
		if diag == "" {
			line = fmt.Sprintf("❌ %s failed with exit code %d", kind.Label(), code)
		}
		return settlement{phase: domain.PhaseFailed, line: line, exitCode: code, err: failure}
	}

	result := rn.extractor.Extract(kind, stdout, stderr)
	return settlement{
		phase:  domain.PhaseSuccess,
		line:   successLine(kind, result),
		result: result,
	}
}

// pump drains both streams concurrently into the status store and returns
// the captured text of each stream once both reached end of input.
func (rn *Runner) pump(ctx context.Context, run *Run, child ports.Process, logger *slog.Logger, event domain.RunEvent) (string, string) {
	lines := make(chan stream.Line, lineBuffer)

	var g errgroup.Group
	drain := func(r io.Reader, name stream.Name) {
		g.Go(func() error {
			err := stream.Drain(r, name, rn.chunkSize, func(l stream.Line) {
				lines <- l
			})
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	drain(child.Stdout(), stream.Stdout)
	drain(child.Stderr(), stream.Stderr)

	var readErr error
	go func() {
		readErr = g.Wait()
		close(lines)
	}()

	norm := progress.New(run.Request.Kind.Transfer())
	var stdout, stderr strings.Builder
	for l := range lines {
		text := SanitizeLine(l.Text)
		if l.Stream == stream.Stderr {
			stderr.WriteString(text + "\n")
		} else {
			stdout.WriteString(text + "\n")
		}

		if value, ok := norm.Classify(text); ok {
			_ = run.store.ReplaceProgress(value)
			if rn.hooks.OnProgress != nil {
				ev := domain.ProgressEvent{RunEvent: event, Value: value}
				ev.Timestamp = rn.now()
				rn.hooks.OnProgress(ctx, &ev)
			}
			continue
		}
		_ = run.store.Append(text)
	}

	// Reads interrupted by cancellation are expected and not worth a warning.
	if readErr != nil && ctx.Err() == nil {
		logger.Warn("stream read error", "error", readErr)
	}
	return stdout.String(), stderr.String()
}

func cancelled(kind domain.ActionKind, code int) settlement {
	return settlement{
		phase:    domain.PhaseCancelled,
		line:     fmt.Sprintf("⏹ %s cancelled", kind.Label()),
		exitCode: code,
		err:      context.Canceled,
	}
}

func successLine(kind domain.ActionKind, result *domain.ExtractedResult) string {
	switch kind {
	case domain.ActionCreateLink:
		if result != nil {
			return "✅ Public link created successfully!"
		}
		return "✅ Command executed successfully!"
	case domain.ActionLogin:
		return "✅ Login successful!"
	case domain.ActionEncryptLocal, domain.ActionDecryptLocal:
		return "✅ Process completed successfully!"
	}
	return fmt.Sprintf("✅ %s completed successfully", kind.Label())
}
