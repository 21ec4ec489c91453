package domain

import "time"

// ExpirySafetyMargin is subtracted from the lifetime the authorization server
// reports, so a token is treated as expired slightly before it actually is.
const ExpirySafetyMargin = 60 * time.Second

// SessionID identifies one authenticated user session.
// Credentials are keyed by session only; there is no global credential.
type SessionID string

// OAuthCredential stores the ERP token pair for a single session.
type OAuthCredential struct {
	// AccessToken is the bearer token for ERP API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens. Rotated on every refresh.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// ExpiresAt is when the access token must no longer be used.
	// Already includes ExpirySafetyMargin.
	ExpiresAt time.Time `json:"expires_at"`
	// UpdatedAt is when the pair was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenGrant is a successful token endpoint response.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	// ExpiresIn is the lifetime in seconds as reported upstream. Zero means unknown.
	ExpiresIn int64
}

// NewOAuthCredential converts a grant into a credential issued at now.
// ExpiresAt is now + expires_in - ExpirySafetyMargin.
func NewOAuthCredential(grant TokenGrant, now time.Time) OAuthCredential {
	return OAuthCredential{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		TokenType:    grant.TokenType,
		ExpiresAt:    now.Add(time.Duration(grant.ExpiresIn)*time.Second - ExpirySafetyMargin),
		UpdatedAt:    now,
	}
}

// IsValidAt returns true if the access token can be used at t.
func (c *OAuthCredential) IsValidAt(t time.Time) bool {
	return c.AccessToken != "" && c.ExpiresAt.After(t)
}

// HasRefreshToken returns true if a refresh token is available.
func (c *OAuthCredential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// ExpiresAtMillis returns the expiry as epoch milliseconds.
func (c *OAuthCredential) ExpiresAtMillis() int64 {
	return c.ExpiresAt.UnixMilli()
}
