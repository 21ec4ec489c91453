package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
	"github.com/custodia-labs/paybridge/internal/core/ports/driving"
	"github.com/custodia-labs/paybridge/internal/logger"
)

// Ensure AuthorizationFlow implements the interface.
var _ driving.AuthorizationFlow = (*AuthorizationFlow)(nil)

// AuthorizationFlow runs the OAuth authorization-code handshake against the ERP.
type AuthorizationFlow struct {
	settings driving.SettingsService
	states   driven.PendingStateStore
	client   driven.TokenClient
	vault    driving.TokenVault
	now      func() time.Time
}

// NewAuthorizationFlow creates an authorization flow.
func NewAuthorizationFlow(
	settings driving.SettingsService,
	states driven.PendingStateStore,
	client driven.TokenClient,
	vault driving.TokenVault,
) *AuthorizationFlow {
	return &AuthorizationFlow{
		settings: settings,
		states:   states,
		client:   client,
		vault:    vault,
		now:      time.Now,
	}
}

// BeginLogin issues a single-use state bound to session and returns the authorization URL.
func (f *AuthorizationFlow) BeginLogin(
	ctx context.Context,
	session domain.SessionID,
	accountType domain.AccountType,
) (string, error) {
	if err := f.settings.ValidateOAuth(); err != nil {
		return "", err
	}
	if session == "" {
		return "", fmt.Errorf("%w: empty session", domain.ErrInvalidInput)
	}
	if !accountType.IsValid() {
		return "", fmt.Errorf("%w: account type %q", domain.ErrInvalidInput, accountType)
	}
	settings, err := f.settings.Get()
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}

	token, err := generateState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	now := f.now()
	pending := domain.PendingState{
		Token:       token,
		Session:     session,
		AccountType: accountType,
		CreatedAt:   now,
		ExpiresAt:   now.Add(settings.StateTTL),
	}

	sctx, cancel := withStoreTimeout(ctx)
	defer cancel()
	if err := f.states.Put(sctx, pending); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}

	return f.client.AuthCodeURL(token, accountType), nil
}

// CompleteCallback consumes the state, exchanges the code and stores the credential.
// The state is consumed before anything else so a replayed callback always fails.
// A state issued to another session is rejected.
func (f *AuthorizationFlow) CompleteCallback(ctx context.Context, session domain.SessionID, code, state string) error {
	if state == "" {
		return domain.ErrInvalidState
	}

	sctx, cancel := withStoreTimeout(ctx)
	pending, err := f.states.Consume(sctx, state)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			logger.Warn("Rejected OAuth callback with unknown or expired state")
			return err
		}
		return fmt.Errorf("consume state: %w", err)
	}
	if !pending.IssuedTo(session) {
		logger.Warn("Rejected OAuth callback for session %s: state was issued to another session", session)
		return domain.ErrInvalidState
	}

	if code == "" {
		return domain.ErrMissingCode
	}
	if err := f.settings.ValidateOAuth(); err != nil {
		return err
	}

	grant, err := f.client.Exchange(ctx, code)
	if err != nil {
		if !errors.Is(err, domain.ErrTokenExchangeFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrTokenExchangeFailed, err)
		}
		return err
	}

	if _, err := f.vault.Store(ctx, session, *grant); err != nil {
		return err
	}
	logger.Info("Authorized session %s", session)
	return nil
}

// Status reports whether the session holds a usable access token.
func (f *AuthorizationFlow) Status(ctx context.Context, session domain.SessionID) (*domain.AuthStatus, error) {
	cred, err := f.vault.Credential(ctx, session)
	if err != nil {
		return nil, err
	}
	status := &domain.AuthStatus{}
	if cred == nil {
		return status, nil
	}

	now := f.now()
	status.ExpiresAt = cred.ExpiresAtMillis()
	status.Authorized = cred.IsValidAt(now)
	if status.Authorized {
		status.ExpiresInMs = cred.ExpiresAt.Sub(now).Milliseconds()
	}
	return status, nil
}

// Refresh forces a refresh grant for the session.
func (f *AuthorizationFlow) Refresh(ctx context.Context, session domain.SessionID) (*domain.RefreshResult, error) {
	if err := f.settings.ValidateOAuth(); err != nil {
		return nil, err
	}
	cred, err := f.vault.Refresh(ctx, session)
	if err != nil {
		return nil, err
	}
	return &domain.RefreshResult{Refreshed: true, ExpiresAt: cred.ExpiresAtMillis()}, nil
}

// Logout clears the session's credential.
func (f *AuthorizationFlow) Logout(ctx context.Context, session domain.SessionID) error {
	if err := f.vault.Clear(ctx, session); err != nil {
		return err
	}
	logger.Info("Logged out session %s", session)
	return nil
}
