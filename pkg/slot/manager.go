package slot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/pipedeck/internal/logging"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/ports"
	"github.com/aretw0/pipedeck/pkg/runner"
	"github.com/aretw0/pipedeck/pkg/status"
)

// DefaultLockTTL bounds how long a distributed trigger lock may be held.
const DefaultLockTTL = 30 * time.Second

// Starter launches a run. *runner.Runner implements it.
type Starter interface {
	Start(ctx context.Context, slot string, req domain.ActionRequest) *runner.Run
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns at most one run per named slot.
// It uses Reference Counting to garbage collect unused slot locks.
type Manager struct {
	starter Starter
	store   ports.OutcomeStore

	mu    sync.Mutex            // Global lock for the lock map
	locks map[string]*lockEntry // Map of active locks

	runsMu sync.RWMutex
	runs   map[string]*runner.Run

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking of triggers.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithStore lets Outcome fall back to persisted outcomes.
func WithStore(store ports.OutcomeStore) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a slot Manager that starts runs through starter.
func NewManager(starter Starter, opts ...Option) *Manager {
	m := &Manager{
		starter: starter,
		locks:   make(map[string]*lockEntry),
		runs:    make(map[string]*runner.Run),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(slot) after unlocking.
func (m *Manager) acquire(slot string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[slot]
	if !exists {
		entry = &lockEntry{}
		m.locks[slot] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(slot string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[slot]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, slot)
	}
}

// withLock executes fn while holding the lock for the slot.
func (m *Manager) withLock(ctx context.Context, slot string, fn func(context.Context) error) error {
	entry := m.acquire(slot)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(slot)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, "slot:"+slot, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"slot", slot,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Trigger starts req in the named slot.
//
// It fails with domain.ErrSlotBusy while the slot's current run is not
// complete. A completed run is replaced: the slot resets to idle and the new
// run starts spawning.
func (m *Manager) Trigger(ctx context.Context, slot string, req domain.ActionRequest) (*runner.Run, error) {
	if slot == "" {
		return nil, fmt.Errorf("%w: empty slot name", domain.ErrInvalidRequest)
	}

	var run *runner.Run
	err := m.withLock(ctx, slot, func(ctx context.Context) error {
		if cur := m.lookup(slot); cur != nil && !cur.Snapshot().Done {
			return fmt.Errorf("%w: %s", domain.ErrSlotBusy, slot)
		}
		run = m.starter.Start(ctx, slot, req)

		m.runsMu.Lock()
		m.runs[slot] = run
		m.runsMu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("slot triggered", "slot", slot, "run_id", run.ID, "kind", req.Kind)
	return run, nil
}

func (m *Manager) lookup(slot string) *runner.Run {
	m.runsMu.RLock()
	defer m.runsMu.RUnlock()
	return m.runs[slot]
}

// Get returns the current run of a slot.
func (m *Manager) Get(slot string) (*runner.Run, error) {
	run := m.lookup(slot)
	if run == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSlotNotFound, slot)
	}
	return run, nil
}

// Snapshot returns the latest status of a slot without blocking.
func (m *Manager) Snapshot(slot string) (*status.Snapshot, error) {
	run, err := m.Get(slot)
	if err != nil {
		return nil, err
	}
	return run.Snapshot(), nil
}

// Cancel asks the slot's current run to stop. Cancelling a completed run is a no-op.
func (m *Manager) Cancel(ctx context.Context, slot string) error {
	return m.withLock(ctx, slot, func(context.Context) error {
		run := m.lookup(slot)
		if run == nil {
			return fmt.Errorf("%w: %s", domain.ErrSlotNotFound, slot)
		}
		run.Cancel()
		return nil
	})
}

// Teardown cancels the slot's run and forgets the slot.
func (m *Manager) Teardown(ctx context.Context, slot string) error {
	return m.withLock(ctx, slot, func(context.Context) error {
		m.runsMu.Lock()
		run, ok := m.runs[slot]
		delete(m.runs, slot)
		m.runsMu.Unlock()

		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrSlotNotFound, slot)
		}
		run.Cancel()
		return nil
	})
}

// Close tears down every slot and waits until the cancelled runs have
// settled, or ctx is done.
func (m *Manager) Close(ctx context.Context) {
	m.runsMu.RLock()
	runs := make([]*runner.Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	m.runsMu.RUnlock()

	for _, slot := range m.Slots() {
		if err := m.Teardown(ctx, slot); err != nil && !errors.Is(err, domain.ErrSlotNotFound) {
			m.logger.Warn("slot teardown failed", "slot", slot, "err", err)
		}
	}
	for _, run := range runs {
		if _, err := run.Wait(ctx); err != nil {
			m.logger.Warn("run still settling at close", "run_id", run.ID, "slot", run.Slot)
			return
		}
	}
}

// Slots returns every known slot name, sorted.
func (m *Manager) Slots() []string {
	m.runsMu.RLock()
	defer m.runsMu.RUnlock()

	out := make([]string, 0, len(m.runs))
	for slot := range m.runs {
		out = append(out, slot)
	}
	slices.Sort(out)
	return out
}

// Active returns the slots whose current run has not completed, sorted.
// A consumer keeps refreshing while this is non-empty.
func (m *Manager) Active() []string {
	m.runsMu.RLock()
	defer m.runsMu.RUnlock()

	var out []string
	for slot, run := range m.runs {
		if !run.Snapshot().Done {
			out = append(out, slot)
		}
	}
	slices.Sort(out)
	return out
}

// Outcome returns the outcome of a run, looking at live slots first and then
// the configured store.
func (m *Manager) Outcome(ctx context.Context, runID string) (*domain.Outcome, error) {
	m.runsMu.RLock()
	for _, run := range m.runs {
		if run.ID == runID {
			if o := run.Outcome(); o != nil {
				m.runsMu.RUnlock()
				return o, nil
			}
		}
	}
	m.runsMu.RUnlock()

	if m.store == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOutcomeNotFound, runID)
	}
	return m.store.Load(ctx, runID)
}
