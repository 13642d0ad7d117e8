package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration in
// internal/service.

import (
	"context"
	"time"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore persists and retrieves user sessions. The session service is
// the sole writer; guards and the aggregator are read-only consumers.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleSource looks up the authorization role attached to an identity via its
// profile record. Implementations fail with errors.RoleNotFound (terminal;
// the identity has no profile) or errors.RoleUnavailable (transient backend
// failure; retryable).
type RoleSource interface {
	GetRole(ctx context.Context, userID string) (domainauth.Role, error)
}

// RoleCache caches the last resolved role per session. The role resolver is
// the only writer; the auth-error interceptor clears entries on forced
// sign-out.
type RoleCache interface {
	// Get returns (role, found). A found nil role is a cached "no profile"
	// result and must not trigger a re-fetch.
	Get(ctx context.Context, sessionID string) (*domainauth.Role, bool, error)
	Set(ctx context.Context, sessionID string, role *domainauth.Role, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}
