package auth

// Package auth contains domain-level types for authentication, sessions, and
// route areas. It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// ParseRole validates a raw role value at the data boundary. There is exactly
// one canonical representation per role; anything else is an error, never a
// default role.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleInstructor:
		return RoleInstructor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("invalid role: %q", raw)
	}
}

// Valid reports whether r is one of the three enumerated roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor || r == RoleAdmin
}

// Satisfies reports whether r meets the given area requirement.
// Admin additionally satisfies any instructor requirement; there is no other
// implicit hierarchy.
func (r Role) Satisfies(required Role) bool {
	if r == required {
		return true
	}
	return r == RoleAdmin && required == RoleInstructor
}

// Identity represents the authenticated principal returned by the IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (sub claim)
	FirstName string
	LastName  string
	Email     string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Session is the server-side record persisted for an authenticated user.
// ID is an opaque session identifier. The role is intentionally NOT part of
// the session: it lives on the profile record and is resolved separately,
// which means it can lag behind session establishment.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity returns the identity view of the session.
func (s Session) Identity() Identity {
	return Identity{
		UserID:    s.UserID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}
}

// Snapshot is the aggregated, point-in-time auth view handed to guards.
//
// Invariants:
//   - RoleLoaded=true implies Role is either a valid enumerated value or nil
//     (identity has no profile; treated as unauthorized, never a default role).
//   - Guards must never admit while SessionLoading is true or RoleLoaded is
//     false. The fail-closed default is the loading placeholder.
type Snapshot struct {
	Identity       *Identity
	Role           *Role
	SessionLoading bool
	RoleLoaded     bool
	// RoleErr is set when role resolution failed after exhausting retries.
	// It is a visible error state with a retry affordance, never a redirect.
	RoleErr error
}

// Authenticated reports whether the snapshot carries a resolved identity.
func (s Snapshot) Authenticated() bool {
	return !s.SessionLoading && s.Identity != nil
}

// Pending reports whether the snapshot is still incomplete. Guards render the
// loading placeholder for pending snapshots.
func (s Snapshot) Pending() bool {
	if s.SessionLoading {
		return true
	}
	// Role resolution only applies when an identity exists.
	return s.Identity != nil && !s.RoleLoaded && s.RoleErr == nil
}
