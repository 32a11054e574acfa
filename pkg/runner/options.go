package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/extract"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithHooks adds lifecycle hooks. Repeated calls are merged in order.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = r.hooks.Merge(hooks)
	}
}

// WithExtractor replaces the default result extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(r *Runner) {
		r.extractor = e
	}
}

// WithChunkSize bounds every read from the child streams.
func WithChunkSize(n int) Option {
	return func(r *Runner) {
		r.chunkSize = n
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithIDGenerator overrides the run ID generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Runner) {
		r.newID = gen
	}
}
