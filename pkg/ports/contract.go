package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOutcome(runID string) *domain.Outcome {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Outcome{
		RunID:    runID,
		Slot:     "link",
		Kind:     domain.ActionCreateLink,
		Phase:    domain.PhaseSuccess,
		ExitCode: 0,
		Command:  []string{"create-public-link", "a.txt", "--api", "https://api.test"},
		Lines:    []string{"Creating link", "✅ Public link created successfully!"},
		Result: &domain.ExtractedResult{
			DirectLink:      "https://x/publicDownload?hash=abc123",
			SocialMediaLink: "https://x/publicDownload?hash=abc123&preview=true",
			DownloadHash:    "abc123",
		},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	}
}

// RunOutcomeStoreContract runs a suite of tests to verify that an OutcomeStore implementation
// adheres to the defined interface contract.
func RunOutcomeStoreContract(t *testing.T, store OutcomeStore) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		outcome := sampleOutcome(runID)

		err := store.Save(ctx, outcome)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, outcome.Phase, loaded.Phase)
		assert.Equal(t, outcome.Command, loaded.Command)
		assert.Equal(t, outcome.Lines, loaded.Lines)
		assert.Equal(t, "abc123", loaded.Result.DownloadHash)
		assert.True(t, outcome.StartedAt.Equal(loaded.StartedAt))
		assert.Equal(t, outcome.Duration(), loaded.Duration())
	})

	t.Run("Save Replaces", func(t *testing.T) {
		outcome := sampleOutcome(runID)
		outcome.Phase = domain.PhaseFailed
		outcome.ExitCode = 3
		require.NoError(t, store.Save(ctx, outcome))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.PhaseFailed, loaded.Phase)
		assert.Equal(t, 3, loaded.ExitCode)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrOutcomeNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sampleOutcome(runID)))

		err := store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrOutcomeNotFound, "Load after Delete should return ErrOutcomeNotFound")

		assert.NoError(t, store.Delete(ctx, runID), "Delete of unknown run is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, sampleOutcome(id1))
		_ = store.Save(ctx, sampleOutcome(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
