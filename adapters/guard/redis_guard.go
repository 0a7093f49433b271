// Package guard tracks consumed login nonces so signed challenges
// cannot be replayed.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goalguru/walletauth/ports"
)

// RedisGuard is a Redis implementation of the ReplayGuard interface.
type RedisGuard struct {
	client *redis.Client
	prefix string
}

// NewRedisGuard creates a Redis-backed replay guard.
func NewRedisGuard(client *redis.Client) ports.ReplayGuard {
	return &RedisGuard{
		client: client,
		prefix: "walletauth:nonce:",
	}
}

// MarkUsed records the nonce as consumed for the session's lifetime.
func (g *RedisGuard) MarkUsed(ctx context.Context, nonce string, ttl time.Duration) error {
	key := g.prefix + nonce

	if err := g.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark nonce used: %w", err)
	}

	return nil
}

// IsUsed checks whether the nonce has already been consumed.
func (g *RedisGuard) IsUsed(ctx context.Context, nonce string) (bool, error) {
	key := g.prefix + nonce

	val, err := g.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check nonce: %w", err)
	}

	return val > 0, nil
}
