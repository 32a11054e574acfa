package memory

import (
	"context"
	"sync"

	"github.com/aretw0/pipedeck/pkg/domain"
)

// Store implements ports.OutcomeStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Outcome
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Outcome),
	}
}

// Save persists a copy of the outcome.
func (s *Store) Save(ctx context.Context, outcome *domain.Outcome) error {
	copied := outcome.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[outcome.RunID] = copied
	return nil
}

// Load retrieves the outcome from memory.
func (s *Store) Load(ctx context.Context, runID string) (*domain.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	outcome, ok := s.data[runID]
	if !ok {
		return nil, domain.ErrOutcomeNotFound
	}

	// Copy on read so callers can't mutate store state through the pointer
	return outcome.Clone(), nil
}

// Delete removes the outcome.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns stored run IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
