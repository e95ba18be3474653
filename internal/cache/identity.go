// Package cache holds resolved user identities so the auth middleware can
// skip a database round trip on every request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"budgetbuddy/internal/logger"
)

// Identity is the cached view of a user that the access gate needs.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Currency string `json:"currency"`
}

// IdentityCache stores identities by user ID. Implementations must treat
// backend failures as misses; callers always fall back to the store.
type IdentityCache interface {
	Get(ctx context.Context, userID string) (*Identity, bool)
	Set(ctx context.Context, id Identity)
	Invalidate(ctx context.Context, userID string)
}

// RedisIdentityCache keeps identities in Redis with a fixed TTL.
type RedisIdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdentityCache wraps an existing Redis client.
func NewRedisIdentityCache(client *redis.Client, ttl time.Duration) *RedisIdentityCache {
	return &RedisIdentityCache{client: client, ttl: ttl}
}

// Connect dials Redis at addr and verifies the connection with PING.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func identityKey(userID string) string {
	return "identity:" + userID
}

// Get implements IdentityCache.
func (c *RedisIdentityCache) Get(ctx context.Context, userID string) (*Identity, bool) {
	raw, err := c.client.Get(ctx, identityKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Named("identity_cache").Warnw("redis GET failed", "error", err, "user_id", userID)
		}
		return nil, false
	}

	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		logger.Named("identity_cache").Warnw("discarding malformed cache entry", "error", err, "user_id", userID)
		c.Invalidate(ctx, userID)
		return nil, false
	}
	return &id, true
}

// Set implements IdentityCache.
func (c *RedisIdentityCache) Set(ctx context.Context, id Identity) {
	data, err := json.Marshal(id)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, identityKey(id.UserID), data, c.ttl).Err(); err != nil {
		logger.Named("identity_cache").Warnw("redis SET failed", "error", err, "user_id", id.UserID)
	}
}

// Invalidate implements IdentityCache.
func (c *RedisIdentityCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, identityKey(userID)).Err(); err != nil {
		logger.Named("identity_cache").Warnw("redis DEL failed", "error", err, "user_id", userID)
	}
}

// NopIdentityCache never stores anything. It is used when Redis is not configured.
type NopIdentityCache struct{}

func (NopIdentityCache) Get(context.Context, string) (*Identity, bool) { return nil, false }
func (NopIdentityCache) Set(context.Context, Identity)                  {}
func (NopIdentityCache) Invalidate(context.Context, string)             {}

var (
	_ IdentityCache = (*RedisIdentityCache)(nil)
	_ IdentityCache = NopIdentityCache{}
)
