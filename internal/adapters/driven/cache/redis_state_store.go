// Package cache provides Redis-backed implementations of short-lived state ports.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/paybridge/internal/core/domain"
	"github.com/custodia-labs/paybridge/internal/core/ports/driven"
)

// statePrefix namespaces pending OAuth states.
const statePrefix = "paybridge:oauth_state:"

// RedisStateStore implements driven.PendingStateStore backed by Redis.
// Expiry is delegated to key TTLs; consumption uses GETDEL so a state
// is handed out at most once across processes.
type RedisStateStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

var _ driven.PendingStateStore = (*RedisStateStore)(nil)

// NewRedisStateStore constructs a Redis-backed state store.
func NewRedisStateStore(client redis.UniversalClient) *RedisStateStore {
	return &RedisStateStore{client: client, now: time.Now}
}

// Put stores the state with a TTL matching its expiry.
func (s *RedisStateStore) Put(ctx context.Context, state domain.PendingState) error {
	ttl := state.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("%w: state already expired", domain.ErrInvalidInput)
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := s.client.Set(ctx, statePrefix+state.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// Consume atomically loads and deletes the state.
func (s *RedisStateStore) Consume(ctx context.Context, token string) (*domain.PendingState, error) {
	bytes, err := s.client.GetDel(ctx, statePrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrInvalidState
		}
		return nil, fmt.Errorf("load state: %w", err)
	}
	var state domain.PendingState
	if err := json.Unmarshal(bytes, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if state.IsExpiredAt(s.now()) {
		return nil, domain.ErrInvalidState
	}
	return &state, nil
}
