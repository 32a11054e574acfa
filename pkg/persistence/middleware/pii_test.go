package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/pipedeck/pkg/adapters/memory"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/persistence/middleware"
	"github.com/aretw0/pipedeck/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_MasksMatchingFields(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"(?i)pubkey"})
	require.NoError(t, err)
	store := mw(underlying)
	ctx := context.Background()

	original := secretOutcome()
	require.NoError(t, store.Save(ctx, original))

	stored, err := underlying.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RedactedValue, stored.Result.Fields["pubkey"])
	assert.Equal(t, "1.25", stored.Result.Fields["sol"])
	assert.Equal(t, []string{"Pubkey: " + domain.RedactedValue, "SOL: 1.25"}, stored.Lines)

	// The caller's outcome is untouched.
	assert.Equal(t, "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", original.Result.Fields["pubkey"])
}

func TestPIIMiddleware_Contract(t *testing.T) {
	mw, err := middleware.NewPIIMiddleware([]string{"pubkey"})
	require.NoError(t, err)
	ports.RunOutcomeStoreContract(t, mw(memory.NewStore()))
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_EncryptsMaskedOutcome(t *testing.T) {
	underlying := memory.NewStore()
	pii, err := middleware.NewPIIMiddleware([]string{"pubkey"})
	require.NoError(t, err)
	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(underlying, pii, enc)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, secretOutcome()))

	stored, err := underlying.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Sealed)

	loaded, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RedactedValue, loaded.Result.Fields["pubkey"])
}
