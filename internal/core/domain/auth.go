package domain

import "time"

// DefaultStateTTL bounds how long an issued authorization redirect stays valid.
const DefaultStateTTL = 10 * time.Minute

// AccountType selects the kind of ERP login requested.
// The empty value is an ordinary user login.
type AccountType string

// Supported account types.
const (
	AccountTypeUser    AccountType = ""
	AccountTypeService AccountType = "service"
)

// IsValid returns true if the account type is recognised.
func (a AccountType) IsValid() bool {
	return a == AccountTypeUser || a == AccountTypeService
}

// PendingState is a single-use correlation token issued with an
// authorization redirect and consumed on callback.
type PendingState struct {
	Token string `json:"token"`
	// Session started the login; only it may complete the callback.
	Session     SessionID   `json:"session"`
	AccountType AccountType `json:"account_type,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// IssuedTo returns true if the state was issued to session.
func (p *PendingState) IssuedTo(session SessionID) bool {
	return session != "" && p.Session == session
}

// IsExpiredAt returns true if the state can no longer be consumed at t.
func (p *PendingState) IsExpiredAt(t time.Time) bool {
	return !p.ExpiresAt.After(t)
}

// AuthStatus reports the authorization state of a session.
// ExpiresAt is epoch milliseconds, zero when the session holds no credential.
type AuthStatus struct {
	Authorized  bool  `json:"authorized"`
	ExpiresAt   int64 `json:"expiresAt,omitempty"`
	ExpiresInMs int64 `json:"expiresInMs"`
}

// Expiry returns ExpiresAt as a time, or the zero time if unset.
func (s *AuthStatus) Expiry() time.Time {
	return fromMillis(s.ExpiresAt)
}

// RefreshResult is returned by an explicit refresh.
// ExpiresAt is epoch milliseconds.
type RefreshResult struct {
	Refreshed bool  `json:"refreshed"`
	ExpiresAt int64 `json:"expiresAt"`
}

// Expiry returns ExpiresAt as a time.
func (r *RefreshResult) Expiry() time.Time {
	return fromMillis(r.ExpiresAt)
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
