package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps authenticated sessions in redis, keyed by the same
// session id the cart store uses, under its own prefix.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func key(sessionID string) string {
	return "session:" + sessionID
}

// Issue mints a session id for a verified user.
func (s *SessionStore) Issue(ctx context.Context, username string) (string, error) {
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, key(id), username, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	return id, nil
}

func (s *SessionStore) Authenticated(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	err := s.rdb.Get(ctx, key(sessionID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return true, nil
}

func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, key(sessionID)).Err()
}
