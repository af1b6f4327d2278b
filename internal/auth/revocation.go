package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

// RedisRevoker keeps revoked token ids in Redis until the token would have expired.
type RedisRevoker struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisRevoker wraps a Redis client.
func NewRedisRevoker(rdb *redis.Client) *RedisRevoker {
	return &RedisRevoker{rdb: rdb, now: time.Now}
}

// Revoke marks tokenID as revoked until the given instant. Already expired
// tokens need no entry.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// Ping checks the Redis connection.
func (r *RedisRevoker) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// NopRevoker is used when no revocation store is configured: logout is
// stateless and tokens live until they expire.
type NopRevoker struct{}

// Revoke does nothing.
func (NopRevoker) Revoke(context.Context, string, time.Time) error { return nil }

// IsRevoked always reports false.
func (NopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }
