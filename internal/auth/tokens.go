package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Identity is what a bearer token resolves to.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// TokenStore issues and resolves opaque bearer tokens.
type TokenStore interface {
	Issue(ctx context.Context, id Identity) (string, error)
	// Resolve returns ErrTokenUnknown for missing or expired tokens.
	Resolve(ctx context.Context, token string) (Identity, error)
	Revoke(ctx context.Context, token string) error
}

var ErrTokenUnknown = errors.New("token unknown")

const keyPrefix = "session:"

// RedisTokenStore keeps sessions as expiring redis keys.
type RedisTokenStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisTokenStore(client redis.Cmdable, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, ttl: ttl}
}

func (s *RedisTokenStore) Issue(ctx context.Context, id Identity) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, keyPrefix+token, raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Resolve(ctx context.Context, token string) (Identity, error) {
	var id Identity
	if token == "" {
		return id, ErrTokenUnknown
	}
	raw, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return id, ErrTokenUnknown
	}
	if err != nil {
		return id, fmt.Errorf("load session: %w", err)
	}
	if err := json.Unmarshal(raw, &id); err != nil || id.UserID == "" {
		return Identity{}, ErrTokenUnknown
	}
	return id, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
