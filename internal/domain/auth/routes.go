package auth

import (
	"sort"
	"strings"
)

// RouteArea maps a path prefix to the role required to enter it.
// The mapping is static configuration, not runtime state.
type RouteArea struct {
	PathPrefix   string
	RequiredRole Role
}

// RouteTable is an ordered set of route areas with longest-prefix matching.
type RouteTable struct {
	areas []RouteArea
}

// Canonical home paths, one fixed path per role. Used both as guard redirect
// targets and for initial-landing routing right after sign-in.
const (
	SignInPath         = "/signin"
	StudentHomePath    = "/dashboard/student"
	InstructorHomePath = "/dashboard/instructor"
	AdminHomePath      = "/dashboard2/admin"
)

// HomePath returns the canonical home for a resolved role. A nil role (no
// profile) routes to sign-in; it never defaults to a role's home.
func HomePath(role *Role) string {
	if role == nil {
		return SignInPath
	}
	switch *role {
	case RoleAdmin:
		return AdminHomePath
	case RoleInstructor:
		return InstructorHomePath
	case RoleStudent:
		return StudentHomePath
	default:
		return SignInPath
	}
}

// NewRouteTable builds a table from the given areas, ordered so that the
// longest prefix is checked first.
func NewRouteTable(areas []RouteArea) *RouteTable {
	sorted := append([]RouteArea(nil), areas...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].PathPrefix) > len(sorted[j].PathPrefix)
	})
	return &RouteTable{areas: sorted}
}

// DefaultRouteTable returns the protected areas of the application.
func DefaultRouteTable() *RouteTable {
	return NewRouteTable([]RouteArea{
		{PathPrefix: StudentHomePath, RequiredRole: RoleStudent},
		{PathPrefix: InstructorHomePath, RequiredRole: RoleInstructor},
		{PathPrefix: AdminHomePath, RequiredRole: RoleAdmin},
	})
}

// Match returns the area whose prefix matches the path, using longest-prefix
// wins on whole path segments. Prefix matching is segment-aware, never
// substring containment: an area "/admin" does not match "/administration".
// The second return is false when no area matches (a misconfigured route).
func (t *RouteTable) Match(path string) (RouteArea, bool) {
	for _, a := range t.areas {
		if prefixMatches(path, a.PathPrefix) {
			return a, true
		}
	}
	return RouteArea{}, false
}

// Areas returns the configured areas in match order.
func (t *RouteTable) Areas() []RouteArea {
	return append([]RouteArea(nil), t.areas...)
}

func prefixMatches(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	// Exact match, or the prefix ends at a segment boundary.
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
