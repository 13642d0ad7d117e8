package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	"github.com/brightpath/academy-ui-api/internal/ports"
)

// RoleResolverOptions groups dependencies and tuning for RoleResolver.
type RoleResolverOptions struct {
	Source ports.RoleSource
	Cache  ports.RoleCache

	CacheTTL time.Duration // default 5m
	// MaxAttempts bounds retries for transient role source failures.
	MaxAttempts int           // default 3
	RetryDelay  time.Duration // initial delay, doubles per attempt; default 200ms

	// Sleep is injectable for tests; defaults to a context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// RoleResolver resolves a user's role from the profile source of truth,
// caching per session. A missing profile is terminal and negative-cached;
// transient source failures are retried with doubling delays and never
// produce a default role.
type RoleResolver struct {
	source ports.RoleSource
	cache  ports.RoleCache

	cacheTTL    time.Duration
	maxAttempts int
	retryDelay  time.Duration
	sleep       func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	inflight map[string]*roleCall
}

type roleCall struct {
	done chan struct{}
	role *domainauth.Role
	err  error
}

// NewRoleResolver constructs a RoleResolver.
func NewRoleResolver(opts RoleResolverOptions) (*RoleResolver, error) {
	if opts.Source == nil {
		return nil, errors.New("role source is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("role cache is required")
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	return &RoleResolver{
		source:      opts.Source,
		cache:       opts.Cache,
		cacheTTL:    ttl,
		maxAttempts: attempts,
		retryDelay:  delay,
		sleep:       sleep,
		inflight:    make(map[string]*roleCall),
	}, nil
}

// Resolve returns the role for the session's user. A nil role with nil error
// means the user has no profile role; callers must treat that as unauthorized
// for any role-gated area, never as a default role. An error indicates the
// role could not be determined right now and the caller may retry later.
func (r *RoleResolver) Resolve(ctx context.Context, sessionID, userID string) (*domainauth.Role, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	if role, ok, err := r.cache.Get(ctx, sessionID); err == nil && ok {
		return role, nil
	}

	// Collapse concurrent lookups for the same session into one source call.
	r.mu.Lock()
	if call, ok := r.inflight[sessionID]; ok {
		r.mu.Unlock()
		select {
		case <-call.done:
			return call.role, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &roleCall{done: make(chan struct{})}
	r.inflight[sessionID] = call
	r.mu.Unlock()

	call.role, call.err = r.fetchAndCache(ctx, sessionID, userID)
	close(call.done)

	r.mu.Lock()
	delete(r.inflight, sessionID)
	r.mu.Unlock()

	return call.role, call.err
}

// Invalidate removes any cached role for a session. Called on logout and on
// auth-error recovery so the next request re-reads the profile.
func (r *RoleResolver) Invalidate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := r.cache.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("invalidate role cache: %w", err)
	}
	return nil
}

func (r *RoleResolver) fetchAndCache(ctx context.Context, sessionID, userID string) (*domainauth.Role, error) {
	role, err := r.fetchWithRetry(ctx, userID)
	if err != nil {
		if apperrors.IsRoleNotFound(err) {
			// Terminal: negative-cache so every request does not re-query.
			_ = r.cache.Set(ctx, sessionID, nil, r.cacheTTL)
			return nil, nil
		}
		return nil, err
	}

	_ = r.cache.Set(ctx, sessionID, &role, r.cacheTTL)
	return &role, nil
}

func (r *RoleResolver) fetchWithRetry(ctx context.Context, userID string) (domainauth.Role, error) {
	delay := r.retryDelay
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		role, err := r.source.GetRole(ctx, userID)
		if err == nil {
			return role, nil
		}
		if !apperrors.IsRoleUnavailable(err) {
			return "", err
		}
		lastErr = err
		if attempt == r.maxAttempts {
			break
		}
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return "", apperrors.RoleUnavailable(sleepErr)
		}
		delay *= 2
	}
	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
