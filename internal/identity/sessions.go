package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("no session")

type Resolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// RedisSessions reads sessions written by the login flow as
// session:<token> -> user id. Each successful lookup slides the expiry.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisSessions(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisSessions {
	return &RedisSessions{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisSessions) Resolve(ctx context.Context, token string) (string, error) {
	key := sessionKey(token)

	userID, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && userID == "") {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("redis get session: %w", err)
	}

	if s.ttl > 0 {
		// The session stays valid until its current expiry.
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			s.logger.Warn("failed to refresh session expiry", "error", err)
		}
	}

	return userID, nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
