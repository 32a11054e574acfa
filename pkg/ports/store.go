package ports

import (
	"context"

	"github.com/aretw0/pipedeck/pkg/domain"
)

// OutcomeStore persists settled run outcomes so they survive the slot that produced them.
type OutcomeStore interface {
	// Save persists the outcome under its RunID, replacing any previous value.
	Save(ctx context.Context, outcome *domain.Outcome) error

	// Load retrieves the outcome of a run.
	// Returns domain.ErrOutcomeNotFound if the run is unknown.
	Load(ctx context.Context, runID string) (*domain.Outcome, error)

	// Delete removes the outcome of a run. Deleting an unknown run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the run IDs currently stored.
	List(ctx context.Context) ([]string, error)
}
