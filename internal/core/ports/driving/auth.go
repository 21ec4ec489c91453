package driving

import (
	"context"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// AuthorizationFlow drives the OAuth authorization-code handshake with the ERP.
type AuthorizationFlow interface {
	// BeginLogin issues a single-use state bound to session and returns the
	// authorization URL.
	BeginLogin(ctx context.Context, session domain.SessionID, accountType domain.AccountType) (string, error)

	// CompleteCallback validates and consumes state, exchanges code and stores
	// the credential for the session.
	CompleteCallback(ctx context.Context, session domain.SessionID, code, state string) error

	// Status reports whether the session holds a usable credential.
	Status(ctx context.Context, session domain.SessionID) (*domain.AuthStatus, error)

	// Refresh forces a refresh grant for the session.
	Refresh(ctx context.Context, session domain.SessionID) (*domain.RefreshResult, error)

	// Logout clears the session's credential.
	Logout(ctx context.Context, session domain.SessionID) error
}

// TokenVault keeps the session-scoped ERP credentials fresh.
type TokenVault interface {
	// GetValidAccessToken returns a usable access token, refreshing when expired.
	// Returns "" and a nil error when the session must re-authorize.
	GetValidAccessToken(ctx context.Context, session domain.SessionID) (string, error)

	// Refresh runs the refresh grant and replaces the stored credential.
	Refresh(ctx context.Context, session domain.SessionID) (*domain.OAuthCredential, error)

	// Store saves a freshly granted credential for the session.
	Store(ctx context.Context, session domain.SessionID, grant domain.TokenGrant) (*domain.OAuthCredential, error)

	// Credential returns the stored credential, or nil if there is none.
	Credential(ctx context.Context, session domain.SessionID) (*domain.OAuthCredential, error)

	// Clear removes the session's credential.
	Clear(ctx context.Context, session domain.SessionID) error
}
