package pipedeck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/pipedeck/internal/logging"
	"github.com/aretw0/pipedeck/pkg/action"
	"github.com/aretw0/pipedeck/pkg/adapters/file"
	"github.com/aretw0/pipedeck/pkg/adapters/memory"
	"github.com/aretw0/pipedeck/pkg/adapters/process"
	"github.com/aretw0/pipedeck/pkg/adapters/redis"
	"github.com/aretw0/pipedeck/pkg/config"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/extract"
	"github.com/aretw0/pipedeck/pkg/observability"
	"github.com/aretw0/pipedeck/pkg/persistence/middleware"
	"github.com/aretw0/pipedeck/pkg/ports"
	"github.com/aretw0/pipedeck/pkg/runner"
	"github.com/aretw0/pipedeck/pkg/slot"
	"github.com/aretw0/pipedeck/pkg/status"
	"github.com/aretw0/pipedeck/pkg/uploads"
)

// Deck is the high-level entry point of the pipedeck library.
// It wires the launcher, runner, slots, outcome store, upload log and metrics
// from a Config and exposes the operations every outer surface needs.
type Deck struct {
	cfg      *config.Config
	launcher ports.Launcher
	store    ports.OutcomeStore
	locker   ports.DistributedLocker
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	runner  *runner.Runner
	slots   *slot.Manager
	uploads *uploads.Log
	metrics *observability.Metrics

	closers []func() error
}

// Option defines a functional option for configuring the Deck.
type Option func(*Deck)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deck) {
		d.logger = logger
	}
}

// WithLauncher replaces the process launcher built from the config.
func WithLauncher(l ports.Launcher) Option {
	return func(d *Deck) {
		d.launcher = l
	}
}

// WithStore replaces the outcome store built from the config.
func WithStore(s ports.OutcomeStore) Option {
	return func(d *Deck) {
		d.store = s
	}
}

// WithLocker serializes slot triggers across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(d *Deck) {
		d.locker = l
	}
}

// WithLifecycleHooks registers additional observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Deck) {
		d.hooks = d.hooks.Merge(hooks)
	}
}

// New builds a Deck. A nil cfg means config.Default().
func New(cfg *config.Config, opts ...Option) (*Deck, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Deck{cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.NewNop()
	}

	if d.launcher == nil {
		d.launcher = process.NewLauncher(
			process.WithExecutable(cfg.Executable),
			process.WithBaseArgs(cfg.BaseArgs...),
			process.WithEnv(cfg.Env),
		)
	}
	if d.store == nil {
		if err := d.openStore(); err != nil {
			return nil, err
		}
	}

	d.metrics = observability.NewMetrics()
	d.uploads = uploads.New(cfg.UploadsLog, uploads.WithLogger(d.logger))

	hooks := d.metrics.Hooks().
		Merge(slot.Recorder(d.store, d.logger)).
		Merge(d.hooks)
	d.runner = runner.New(d.launcher,
		runner.WithLogger(d.logger),
		runner.WithHooks(hooks),
		runner.WithChunkSize(cfg.ChunkSize),
		runner.WithExtractor(extract.New(extract.WithLinkHost(cfg.LinkHost))),
	)

	slotOpts := []slot.Option{slot.WithStore(d.store), slot.WithLogger(d.logger)}
	if d.locker != nil {
		slotOpts = append(slotOpts, slot.WithLocker(d.locker))
	}
	d.slots = slot.NewManager(d.runner, slotOpts...)

	d.logger.Debug("deck ready", "executable", cfg.Executable, "store", cfg.Store.String())
	return d, nil
}

// openStore builds the configured backend, then wraps it with masking and
// encryption when the config asks for them.
func (d *Deck) openStore() error {
	sc := d.cfg.Store

	var mws []middleware.Middleware
	if len(sc.Mask) > 0 {
		pii, err := middleware.NewPIIMiddleware(sc.Mask)
		if err != nil {
			return err
		}
		mws = append(mws, pii)
	}
	active, fallback, err := sc.Keys()
	if err != nil {
		return err
	}
	if active != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			return err
		}
		mws = append(mws, enc)
	}

	var store ports.OutcomeStore
	switch sc.Kind {
	case config.StoreFile:
		store = file.New(sc.Path)
	case config.StoreRedis:
		rs := redis.New(sc.RedisAddr, sc.RedisPassword, sc.RedisDB, redis.WithTTL(sc.TTL.Std()))
		store = rs
		if d.locker == nil {
			d.locker = redis.NewLocker(rs.Client(), "pipedeck:")
		}
		d.closers = append(d.closers, rs.Close)
	default:
		store = memory.NewStore()
	}
	d.store = middleware.Chain(store, mws...)
	return nil
}

// Config returns the effective configuration.
func (d *Deck) Config() *config.Config { return d.cfg }

// Slots returns the slot manager.
func (d *Deck) Slots() *slot.Manager { return d.slots }

// Uploads returns the upload log reader.
func (d *Deck) Uploads() *uploads.Log { return d.uploads }

// Metrics returns the prometheus collectors.
func (d *Deck) Metrics() *observability.Metrics { return d.metrics }

// Store returns the outcome store.
func (d *Deck) Store() ports.OutcomeStore { return d.store }

// Defaults returns the payload defaults derived from the config.
func (d *Deck) Defaults() action.Defaults {
	return action.Defaults{API: d.cfg.API}
}

// Trigger decodes params for kind, validates them and starts the action in slot.
func (d *Deck) Trigger(ctx context.Context, slotName string, kind domain.ActionKind, params map[string]any) (*runner.Run, error) {
	req, err := action.Build(kind, params, d.Defaults())
	if err != nil {
		return nil, err
	}
	return d.Submit(ctx, slotName, req)
}

// Submit starts a prebuilt request in slot. Public links are only created
// for remote names present in the upload log.
func (d *Deck) Submit(ctx context.Context, slotName string, req domain.ActionRequest) (*runner.Run, error) {
	if req.Kind == domain.ActionCreateLink {
		if len(req.Args) == 0 {
			return nil, fmt.Errorf("%w: create-link needs a remote name", domain.ErrInvalidRequest)
		}
		if err := d.uploads.RequireRemote(ctx, req.Args[0]); err != nil {
			return nil, err
		}
	}
	return d.slots.Trigger(ctx, slotName, req)
}

// Snapshot returns the latest status of a slot.
func (d *Deck) Snapshot(slotName string) (*status.Snapshot, error) {
	return d.slots.Snapshot(slotName)
}

// Cancel stops the run in a slot.
func (d *Deck) Cancel(ctx context.Context, slotName string) error {
	return d.slots.Cancel(ctx, slotName)
}

// Active returns the slots whose run has not completed.
func (d *Deck) Active() []string {
	return d.slots.Active()
}

// SearchUploads filters the upload log, newest first.
func (d *Deck) SearchUploads(ctx context.Context, term string) ([]domain.UploadRecord, error) {
	return d.uploads.Search(ctx, term)
}

// Outcome returns the record of a finished run.
func (d *Deck) Outcome(ctx context.Context, runID string) (*domain.Outcome, error) {
	return d.slots.Outcome(ctx, runID)
}

// Close cancels every slot and releases backend connections.
func (d *Deck) Close(ctx context.Context) error {
	d.slots.Close(ctx)
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
