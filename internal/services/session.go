package services

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSessionTTL is 7 days
	DefaultSessionTTL = 7 * 24 * time.Hour
	// SessionKeyPrefix maps a token's jti to its user id
	SessionKeyPrefix = "session:"
	// UserSessionsKeyPrefix holds the set of live jtis for a user
	UserSessionsKeyPrefix = "user_sessions:"
)

// SessionStore keeps server-side sessions in Redis so that issued tokens can be revoked.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Create registers sessionID for userID. Other sessions of the user stay valid.
func (s *SessionStore) Create(ctx context.Context, userID, sessionID string) error {
	userKey := UserSessionsKeyPrefix + userID

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, SessionKeyPrefix+sessionID, userID, s.ttl)
	pipe.SAdd(ctx, userKey, sessionID)
	pipe.Expire(ctx, userKey, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Validate returns the user id a live session belongs to.
func (s *SessionStore) Validate(ctx context.Context, sessionID string) (string, bool, error) {
	if sessionID == "" {
		return "", false, nil
	}
	userID, err := s.rdb.Get(ctx, SessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

// Invalidate removes a single session.
func (s *SessionStore) Invalidate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	userID, ok, err := s.Validate(ctx, sessionID)
	if err != nil {
		return err
	}
	if ok {
		s.rdb.SRem(ctx, UserSessionsKeyPrefix+userID, sessionID)
	}
	return s.rdb.Del(ctx, SessionKeyPrefix+sessionID).Err()
}

// InvalidateUser removes every session of a user (account deletion).
func (s *SessionStore) InvalidateUser(ctx context.Context, userID string) error {
	userKey := UserSessionsKeyPrefix + userID
	ids, err := s.rdb.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, SessionKeyPrefix+id)
	}
	keys = append(keys, userKey)
	return s.rdb.Del(ctx, keys...).Err()
}
