package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/pipedeck/pkg/adapters/memory"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunOutcomeStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	o := &domain.Outcome{RunID: "r1", Lines: []string{"a"}, Result: &domain.ExtractedResult{Fields: map[string]string{"sol": "1"}}}
	require.NoError(t, store.Save(ctx, o))

	o.Lines[0] = "mutated"
	o.Result.Fields["sol"] = "2"

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.Lines[0])
	assert.Equal(t, "1", loaded.Result.Fields["sol"])
}
