package slot

import (
	"context"
	"log/slog"

	"github.com/aretw0/pipedeck/internal/logging"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/ports"
)

// Recorder returns hooks that persist every finished run to store.
// Save failures are logged; they never affect the run.
func Recorder(store ports.OutcomeStore, logger *slog.Logger) domain.LifecycleHooks {
	if logger == nil {
		logger = logging.NewNop()
	}
	return domain.LifecycleHooks{
		OnComplete: func(ctx context.Context, o *domain.Outcome) {
			if err := store.Save(ctx, o); err != nil {
				logger.Error("failed to persist outcome", "run_id", o.RunID, "slot", o.Slot, "err", err)
			}
		},
	}
}
