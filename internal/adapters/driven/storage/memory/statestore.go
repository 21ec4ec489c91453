package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.PendingStateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.PendingStateStore.
// Expired entries are pruned on every Put and Consume.
type StateStore struct {
	mu     sync.Mutex
	states map[string]domain.PendingState
	now    func() time.Time
}

// NewStateStore creates a new in-memory pending state store.
func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[string]domain.PendingState),
		now:    time.Now,
	}
}

// Put records an issued state.
func (s *StateStore) Put(_ context.Context, state domain.PendingState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.states[state.Token] = state
	return nil
}

// Consume removes and returns the state.
func (s *StateStore) Consume(_ context.Context, token string) (*domain.PendingState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()

	state, ok := s.states[token]
	if !ok {
		return nil, domain.ErrInvalidState
	}
	delete(s.states, token)
	return &state, nil
}

// Len returns the number of live states.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	return len(s.states)
}

func (s *StateStore) prune() {
	now := s.now()
	for token, state := range s.states {
		if state.IsExpiredAt(now) {
			delete(s.states, token)
		}
	}
}
