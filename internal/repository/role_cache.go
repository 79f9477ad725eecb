package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shalom-church/portal/internal/domain"
)

// RoleCache keeps recently resolved roles.
type RoleCache interface {
	Get(ctx context.Context, userID string) (domain.Role, bool, error)
	Set(ctx context.Context, userID string, role domain.Role) error
	Delete(ctx context.Context, userID string) error
}

type redisRoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRoleCache returns a Redis-backed cache. A zero ttl disables caching.
func NewRedisRoleCache(client *redis.Client, ttl time.Duration) RoleCache {
	return &redisRoleCache{client: client, ttl: ttl}
}

func roleCacheKey(userID string) string {
	return "role:" + userID
}

func (c *redisRoleCache) Get(ctx context.Context, userID string) (domain.Role, bool, error) {
	if c.client == nil || c.ttl <= 0 {
		return domain.RoleNone, false, nil
	}
	val, err := c.client.Get(ctx, roleCacheKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.RoleNone, false, nil
	}
	if err != nil {
		return domain.RoleNone, false, err
	}
	role := domain.Role(val)
	if !role.Valid() {
		return domain.RoleNone, false, nil
	}
	return role, true, nil
}

func (c *redisRoleCache) Set(ctx context.Context, userID string, role domain.Role) error {
	if c.client == nil || c.ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, roleCacheKey(userID), string(role), c.ttl).Err()
}

func (c *redisRoleCache) Delete(ctx context.Context, userID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, roleCacheKey(userID)).Err()
}
