// Package session issues opaque tokens for anonymous cart owners.
//
// Tokens live in Redis with a sliding TTL; the token itself is the cart
// owner key, so an expired token simply strands its cart until the owner
// cascade cleans it up.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "session:"
	defaultTTL = 30 * 24 * time.Hour
)

type Service struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client) *Service {
	return &Service{rdb: rdb, ttl: defaultTTL}
}

// Issue creates a new anonymous session token.
func (s *Service) Issue(ctx context.Context) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, keyPrefix+token, time.Now().UTC().Format(time.RFC3339), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Validate reports whether token names a live session and refreshes its
// TTL when it does.
func (s *Service) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	err := s.rdb.Get(ctx, keyPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.rdb.Expire(ctx, keyPrefix+token, s.ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}
