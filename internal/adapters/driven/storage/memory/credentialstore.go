package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore is an in-memory implementation of driven.CredentialStore.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[domain.SessionID]domain.OAuthCredential
}

// NewCredentialStore creates a new in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		creds: make(map[domain.SessionID]domain.OAuthCredential),
	}
}

// Save stores or replaces the credential of a session.
func (s *CredentialStore) Save(_ context.Context, session domain.SessionID, cred domain.OAuthCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[session] = cred
	return nil
}

// Get retrieves the credential of a session.
func (s *CredentialStore) Get(_ context.Context, session domain.SessionID) (*domain.OAuthCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[session]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cred, nil
}

// Delete removes the credential of a session.
func (s *CredentialStore) Delete(_ context.Context, session domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, session)
	return nil
}
