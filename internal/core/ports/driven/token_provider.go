package driven

import (
	"context"

	"github.com/custodia-labs/paybridge/internal/core/domain"
)

// TokenClient talks to the ERP authorization server.
type TokenClient interface {
	// AuthCodeURL builds the authorization redirect for a state.
	AuthCodeURL(state string, accountType domain.AccountType) string

	// Exchange trades an authorization code for a token pair.
	// Upstream rejections are *domain.UpstreamError with Kind ErrTokenExchangeFailed.
	Exchange(ctx context.Context, code string) (*domain.TokenGrant, error)

	// Refresh runs the refresh grant.
	// Upstream rejections are *domain.UpstreamError with Kind ErrRefreshFailed.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)
}
