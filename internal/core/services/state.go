package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"
)

// stateBytes is the entropy of an OAuth state token.
const stateBytes = 32

// storeTimeout bounds every record and credential store call made by services.
const storeTimeout = 15 * time.Second

// publishTimeout bounds one event publication.
const publishTimeout = 5 * time.Second

// generateState creates a random state parameter for CSRF protection.
func generateState() (string, error) {
	bytes := make([]byte, stateBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// withStoreTimeout derives a context for one store call.
func withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}
