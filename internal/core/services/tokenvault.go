package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
	"github.com/custodia-labs/paybridge/internal/logger"
)

// Ensure TokenVault implements the interface.
var _ driving.TokenVault = (*TokenVault)(nil)

// TokenVault keeps one OAuth credential per session and refreshes it on demand.
type TokenVault struct {
	store  driven.CredentialStore
	client driven.TokenClient
	now    func() time.Time

	// refreshMu serialises refresh grants so a rotated refresh token is
	// never redeemed twice.
	refreshMu sync.Mutex
}

// NewTokenVault creates a token vault.
func NewTokenVault(store driven.CredentialStore, client driven.TokenClient) *TokenVault {
	return &TokenVault{
		store:  store,
		client: client,
		now:    time.Now,
	}
}

// GetValidAccessToken returns the session's access token, refreshing it when expired.
// An empty token with a nil error means the session has to authorize again.
func (v *TokenVault) GetValidAccessToken(ctx context.Context, session domain.SessionID) (string, error) {
	cred, err := v.Credential(ctx, session)
	if err != nil {
		return "", err
	}
	if cred == nil {
		return "", nil
	}
	if cred.IsValidAt(v.now()) {
		return cred.AccessToken, nil
	}
	if !cred.HasRefreshToken() {
		logger.Debug("Session %s has an expired token and no refresh token", session)
		return "", nil
	}

	refreshed, err := v.Refresh(ctx, session)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Refresh runs the refresh grant and replaces the stored credential.
func (v *TokenVault) Refresh(ctx context.Context, session domain.SessionID) (*domain.OAuthCredential, error) {
	v.refreshMu.Lock()
	defer v.refreshMu.Unlock()

	cred, err := v.Credential(ctx, session)
	if err != nil {
		return nil, err
	}
	if cred == nil || !cred.HasRefreshToken() {
		return nil, domain.ErrAuthRequired
	}

	grant, err := v.client.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		if !errors.Is(err, domain.ErrRefreshFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
		}
		return nil, err
	}
	// Servers that do not rotate omit the refresh token; the current one stays valid.
	if grant.RefreshToken == "" {
		grant.RefreshToken = cred.RefreshToken
	}

	next, err := v.Store(ctx, session, *grant)
	if err != nil {
		return nil, err
	}
	logger.Debug("Refreshed credential for session %s, expires %s", session, next.ExpiresAt.Format(time.RFC3339))
	return next, nil
}

// Store saves a freshly granted credential for the session.
func (v *TokenVault) Store(
	ctx context.Context, session domain.SessionID, grant domain.TokenGrant,
) (*domain.OAuthCredential, error) {
	if session == "" {
		return nil, fmt.Errorf("%w: empty session", domain.ErrInvalidInput)
	}
	cred := domain.NewOAuthCredential(grant, v.now())

	sctx, cancel := withStoreTimeout(ctx)
	defer cancel()
	if err := v.store.Save(sctx, session, cred); err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}
	return &cred, nil
}

// Credential returns the stored credential, or nil if the session has none.
func (v *TokenVault) Credential(ctx context.Context, session domain.SessionID) (*domain.OAuthCredential, error) {
	if session == "" {
		return nil, nil
	}
	sctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	cred, err := v.store.Get(sctx, session)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return cred, nil
}

// Clear removes the session's credential.
func (v *TokenVault) Clear(ctx context.Context, session domain.SessionID) error {
	sctx, cancel := withStoreTimeout(ctx)
	defer cancel()
	if err := v.store.Delete(sctx, session); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
