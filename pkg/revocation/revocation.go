package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps revoked-session markers in Redis, keyed by token hash, as a
// fast pre-filter in front of the Postgres source of truth. A marker only
// ever causes an early reject; its absence proves nothing, and Redis
// faults are treated as "not cached" by callers.
type Cache struct {
	redis *redis.Client
}

// NewCache creates a new revocation cache
func NewCache(redisClient *redis.Client) *Cache {
	return &Cache{redis: redisClient}
}

func key(tokenHash string) string {
	return fmt.Sprintf("revoked:session:%s", tokenHash)
}

// MarkRevoked records a revocation marker with TTL. The TTL should cover
// the session's remaining lifetime; after that the database row is
// expired anyway and the marker is dead weight.
func (c *Cache) MarkRevoked(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	if err := c.redis.Set(ctx, key(tokenHash), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark session revoked: %w", err)
	}

	return nil
}

// IsRevoked checks for a revocation marker
func (c *Cache) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	exists, err := c.redis.Exists(ctx, key(tokenHash)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation marker: %w", err)
	}

	return exists > 0, nil
}
