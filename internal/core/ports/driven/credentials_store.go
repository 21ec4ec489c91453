package driven

import (
	"context"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// CredentialStore persists OAuth credentials keyed by session.
// A credential is never readable through another session's id.
type CredentialStore interface {
	// Save stores the credential of a session. Creates if new, replaces if exists.
	Save(ctx context.Context, session domain.SessionID, cred domain.OAuthCredential) error

	// Get retrieves the credential of a session.
	// Returns domain.ErrNotFound if the session has none.
	Get(ctx context.Context, session domain.SessionID) (*domain.OAuthCredential, error)

	// Delete removes the credential of a session. Deleting a missing one is not an error.
	Delete(ctx context.Context, session domain.SessionID) error
}

// PendingStateStore holds issued OAuth states until they are consumed or expire.
// Implementations must bound growth: expired entries are pruned or evicted.
type PendingStateStore interface {
	// Put records an issued state.
	Put(ctx context.Context, state domain.PendingState) error

	// Consume atomically removes and returns the state.
	// Returns domain.ErrInvalidState if it is unknown or expired.
	Consume(ctx context.Context, token string) (*domain.PendingState, error)
}
