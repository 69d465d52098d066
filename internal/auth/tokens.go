package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

type TokenKind string

const (
	TokenActivation    TokenKind = "activation"
	TokenPasswordReset TokenKind = "password-reset"
	TokenEmailChange   TokenKind = "email-change"

	tokenKeyPrefix = "workoutplan-token||"
)

var ErrTokenNotFound = errors.New("token invalid or expired")

var tokenTTLs = map[TokenKind]time.Duration{
	TokenActivation:    24 * time.Hour,
	TokenPasswordReset: time.Hour,
	TokenEmailChange:   24 * time.Hour,
}

// TokenStore keeps single-use tokens sent by mail. The stored payload is opaque to the store.
type TokenStore struct {
	redisClient *redis.Client
	NewToken    func() string
}

func NewTokenStore(redisClient *redis.Client) *TokenStore {
	return &TokenStore{
		redisClient: redisClient,
		NewToken:    uuid.NewString,
	}
}

func tokenKey(kind TokenKind, token string) string {
	return tokenKeyPrefix + string(kind) + "||" + token
}

func (s *TokenStore) Issue(ctx context.Context, kind TokenKind, payload string) (string, error) {
	ttl, ok := tokenTTLs[kind]
	if !ok {
		return "", fmt.Errorf("unknown token kind: %s", kind)
	}
	token := s.NewToken()
	if err := s.redisClient.Set(ctx, tokenKey(kind, token), payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("store %s token: %w", kind, err)
	}
	return token, nil
}

// Consume returns the token's payload and invalidates it.
func (s *TokenStore) Consume(ctx context.Context, kind TokenKind, token string) (string, error) {
	key := tokenKey(kind, token)
	payload, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		return "", err
	}
	return payload, nil
}
