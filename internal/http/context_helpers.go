package httpx

import (
	"context"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type sessionKey struct{}

// snapshotKey carries the guard-evaluated auth snapshot for downstream handlers.
type snapshotKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// If session is nil, the original ctx is returned unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// GetUserSessionFromContext returns the user session from context and a boolean indicating presence.
func GetUserSessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// GetSessionFromContext retrieves the session from the request context.
// Maintained for convenience; prefer GetUserSessionFromContext when you need presence info.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	if s, ok := GetUserSessionFromContext(ctx); ok {
		return s
	}
	return nil
}

// SetSnapshotInContext returns a child context carrying the guard's snapshot.
func SetSnapshotInContext(ctx context.Context, snap domainauth.Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, snap)
}

// SnapshotFromContext returns the auth snapshot placed by a layout guard.
func SnapshotFromContext(ctx context.Context) (domainauth.Snapshot, bool) {
	if snap, ok := ctx.Value(snapshotKey{}).(domainauth.Snapshot); ok {
		return snap, true
	}
	return domainauth.Snapshot{}, false
}
