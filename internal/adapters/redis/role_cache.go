package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	"github.com/redis/go-redis/v9"
)

// noProfileMarker is the cached sentinel for a terminal "identity has no
// profile" resolution, so the resolver does not re-fetch on every evaluation.
const noProfileMarker = "__none__"

// RoleCache caches the resolved role per session ID. The role resolver is the
// only writer; the auth-error interceptor deletes entries on forced sign-out.
type RoleCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRoleCache creates a Redis-backed role cache.
func NewRoleCache(client redis.UniversalClient) *RoleCache {
	return &RoleCache{client: client, prefix: "role:"}
}

// Get returns the cached role for a session. A found nil role means the
// identity definitively has no profile.
func (c *RoleCache) Get(ctx context.Context, sessionID string) (*domainauth.Role, bool, error) {
	if sessionID == "" {
		return nil, false, errors.New("session ID cannot be empty")
	}

	val, err := c.client.Get(ctx, c.prefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	if val == noProfileMarker {
		return nil, true, nil
	}

	role, parseErr := domainauth.ParseRole(val)
	if parseErr != nil {
		// A corrupt cache entry must not grant access; treat as a miss.
		return nil, false, nil
	}
	return &role, true, nil
}

// Set stores the resolved role (or the no-profile marker for nil).
func (c *RoleCache) Set(ctx context.Context, sessionID string, role *domainauth.Role, ttl time.Duration) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	val := noProfileMarker
	if role != nil {
		if !role.Valid() {
			return fmt.Errorf("invalid role: %q", *role)
		}
		val = string(*role)
	}
	return c.client.Set(ctx, c.prefix+sessionID, val, ttl).Err()
}

// Delete removes the cached role for a session.
func (c *RoleCache) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return c.client.Del(ctx, c.prefix+sessionID).Err()
}
