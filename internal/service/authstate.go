package service

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
)

// AuthStateOptions groups dependencies for AuthStateAggregator.
type AuthStateOptions struct {
	Auth  *AuthService
	Roles *RoleResolver
}

// AuthStateAggregator combines session and role lookups into a single
// authorization snapshot. The session is always established before the role
// is consulted, and per-session generation counters let a reset (sign-out,
// expired token) discard results from lookups that started before it.
type AuthStateAggregator struct {
	auth  *AuthService
	roles *RoleResolver

	mu          sync.Mutex
	generations map[string]uint64
	subs        map[string]map[chan struct{}]struct{}
}

// NewAuthStateAggregator constructs an AuthStateAggregator.
func NewAuthStateAggregator(opts AuthStateOptions) (*AuthStateAggregator, error) {
	if opts.Auth == nil {
		return nil, errors.New("auth service is required")
	}
	if opts.Roles == nil {
		return nil, errors.New("role resolver is required")
	}
	return &AuthStateAggregator{
		auth:        opts.Auth,
		roles:       opts.Roles,
		generations: make(map[string]uint64),
		subs:        make(map[string]map[chan struct{}]struct{}),
	}, nil
}

// Snapshot returns the current authorization state for a session ID. An empty
// or unknown session ID yields an unauthenticated snapshot, never an error:
// callers redirect on it rather than failing the request.
//
// The snapshot is fail-closed. Role is only non-nil when the profile lookup
// concluded with a valid role, and RoleLoaded is only true when the lookup
// concluded at all (including the terminal no-profile case).
func (a *AuthStateAggregator) Snapshot(ctx context.Context, sessionID string) domainauth.Snapshot {
	if sessionID == "" {
		return domainauth.Snapshot{RoleLoaded: true}
	}

	gen := a.generation(sessionID)

	session, err := a.auth.GetSession(ctx, sessionID)
	if err != nil {
		// Missing or expired session reads as unauthenticated.
		return domainauth.Snapshot{RoleLoaded: true}
	}
	identity := session.Identity()

	role, roleErr := a.roles.Resolve(ctx, sessionID, session.UserID)

	if a.generation(sessionID) != gen {
		// A reset happened while we were looking things up. The result may
		// describe a signed-out user, so discard it and report pending.
		return domainauth.Snapshot{SessionLoading: true}
	}

	if roleErr != nil {
		return domainauth.Snapshot{
			Identity: &identity,
			RoleErr:  roleErr,
		}
	}
	return domainauth.Snapshot{
		Identity:   &identity,
		Role:       role,
		RoleLoaded: true,
	}
}

// Reset invalidates all derived auth state for a session: the role cache is
// cleared, the generation is bumped so in-flight snapshots are discarded, and
// subscribers are woken to re-read.
func (a *AuthStateAggregator) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	a.mu.Lock()
	a.generations[sessionID]++
	a.mu.Unlock()

	err := a.roles.Invalidate(ctx, sessionID)
	a.notify(sessionID)
	return err
}

// Subscribe registers for change notifications on a session's auth state.
// It returns an unsubscribe func and a signal channel; receivers re-read the
// snapshot when signaled. The channel has capacity one and coalesces bursts.
func (a *AuthStateAggregator) Subscribe(sessionID string) (func(), <-chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ch := make(chan struct{}, 1)
	if a.subs[sessionID] == nil {
		a.subs[sessionID] = make(map[chan struct{}]struct{})
	}
	a.subs[sessionID][ch] = struct{}{}

	unsub := func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		subscribers := a.subs[sessionID]
		if subscribers == nil {
			return
		}
		if _, ok := subscribers[ch]; !ok {
			return
		}
		delete(subscribers, ch)
		drainAndClose(ch)
		if len(subscribers) == 0 {
			delete(a.subs, sessionID)
		}
	}

	return unsub, ch
}

func (a *AuthStateAggregator) generation(sessionID string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generations[sessionID]
}

func (a *AuthStateAggregator) notify(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for ch := range a.subs[sessionID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// drainAndClose removes any buffered notifications before closing the channel
// so receivers observe a closed channel immediately.
func drainAndClose(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			close(ch)
			return
		}
	}
}
