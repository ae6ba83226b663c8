package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"clinic-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TokenStore tracks issued tokens. A token is accepted only while its ID is
// present, so deleting it revokes the token before it expires.
type TokenStore interface {
	Save(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType, ttl time.Duration) error
	Exists(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

func tokenKey(userID uuid.UUID, tokenID string, tokenType jwt.TokenType) string {
	if tokenType == jwt.RefreshToken {
		return fmt.Sprintf("refresh_token:%s:%s", userID.String(), tokenID)
	}
	return fmt.Sprintf("access_token:%s:%s", userID.String(), tokenID)
}

type redisTokenStore struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewRedisTokenStore(redisClient *redis.Client, log *logrus.Logger) TokenStore {
	return &redisTokenStore{redisClient: redisClient, log: log}
}

func (s *redisTokenStore) Save(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType, ttl time.Duration) error {
	return s.redisClient.Set(ctx, tokenKey(userID, tokenID, tokenType), "valid", ttl).Err()
}

func (s *redisTokenStore) Exists(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) (bool, error) {
	n, err := s.redisClient.Exists(ctx, tokenKey(userID, tokenID, tokenType)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisTokenStore) Revoke(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) error {
	return s.redisClient.Del(ctx, tokenKey(userID, tokenID, tokenType)).Err()
}

// RevokeAll removes every token of a user. SCAN is used instead of KEYS so
// a large keyspace does not block Redis.
func (s *redisTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, pattern := range []string{
		fmt.Sprintf("access_token:%s:*", userID.String()),
		fmt.Sprintf("refresh_token:%s:*", userID.String()),
	} {
		iter := s.redisClient.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete tokens: %w", err)
		}
		s.log.Debugf("Revoked %d tokens matching %s", len(keys), pattern)
	}
	return nil
}

// memoryTokenStore keeps tokens in process memory. It serves single-node
// deployments running without Redis.
type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{tokens: make(map[string]time.Time), now: time.Now}
}

func (s *memoryTokenStore) Save(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.tokens[tokenKey(userID, tokenID, tokenType)] = s.now().Add(ttl)
	return nil
}

func (s *memoryTokenStore) Exists(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.tokens[tokenKey(userID, tokenID, tokenType)]
	return ok && s.now().Before(expiresAt), nil
}

func (s *memoryTokenStore) Revoke(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenKey(userID, tokenID, tokenType))
	return nil
}

func (s *memoryTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	marker := ":" + userID.String() + ":"
	for key := range s.tokens {
		if strings.Contains(key, marker) {
			delete(s.tokens, key)
		}
	}
	return nil
}

func (s *memoryTokenStore) purgeLocked() {
	now := s.now()
	for key, expiresAt := range s.tokens {
		if !now.Before(expiresAt) {
			delete(s.tokens, key)
		}
	}
}
