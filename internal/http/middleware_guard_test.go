package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubState serves a fixed snapshot regardless of session.
type stubState struct {
	snap domainauth.Snapshot
}

func (s *stubState) Snapshot(context.Context, string) domainauth.Snapshot { return s.snap }

func guardRequest(t *testing.T, snap domainauth.Snapshot, path string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	return guardRequestWithTable(t, snap, path, domainauth.DefaultRouteTable())
}

func guardRequestWithTable(
	t *testing.T, snap domainauth.Snapshot, path string, table *domainauth.RouteTable,
) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("area content"))
	})

	guard := Guard(GuardOptions{
		State:  &stubState{snap: snap},
		Routes: table,
		Logger: slog.Default(),
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	guard(next).ServeHTTP(rec, req)
	return rec, nextCalled
}

func TestGuard_SessionLoadingRendersPlaceholder(t *testing.T) {
	snap := domainauth.Snapshot{SessionLoading: true}

	rec, nextCalled := guardRequest(t, snap, domainauth.StudentHomePath)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, nextCalled)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "Checking your session")
}

func TestGuard_RolePendingRendersPlaceholder(t *testing.T) {
	snap := domainauth.Snapshot{Identity: &domainauth.Identity{UserID: "user-1"}}

	rec, nextCalled := guardRequest(t, snap, domainauth.StudentHomePath)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, nextCalled)
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestGuard_UnauthenticatedRedirectsToSignIn(t *testing.T) {
	snap := domainauth.Snapshot{RoleLoaded: true}

	rec, nextCalled := guardRequest(t, snap, domainauth.StudentHomePath)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.False(t, nextCalled)
	assert.Equal(t, domainauth.SignInPath, rec.Header().Get("Location"))
}

func TestGuard_MatchingRoleRenders(t *testing.T) {
	role := domainauth.RoleStudent
	snap := domainauth.Snapshot{
		Identity:   &domainauth.Identity{UserID: "user-1", FirstName: "Ada"},
		Role:       &role,
		RoleLoaded: true,
	}

	rec, nextCalled := guardRequest(t, snap, domainauth.StudentHomePath)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, nextCalled)
	assert.Contains(t, rec.Body.String(), "area content")
}

func TestGuard_AdminEntersInstructorArea(t *testing.T) {
	role := domainauth.RoleAdmin
	snap := domainauth.Snapshot{
		Identity:   &domainauth.Identity{UserID: "user-1"},
		Role:       &role,
		RoleLoaded: true,
	}

	_, nextCalled := guardRequest(t, snap, domainauth.InstructorHomePath)
	assert.True(t, nextCalled)
}

func TestGuard_WrongRoleRedirectsToOwnHome(t *testing.T) {
	role := domainauth.RoleAdmin
	snap := domainauth.Snapshot{
		Identity:   &domainauth.Identity{UserID: "user-1"},
		Role:       &role,
		RoleLoaded: true,
	}

	rec, nextCalled := guardRequest(t, snap, domainauth.StudentHomePath)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.False(t, nextCalled)
	assert.Equal(t, domainauth.AdminHomePath, rec.Header().Get("Location"))
}

// An identity without a profile never gets a default role's home.
func TestGuard_NilRoleRedirectsToSignIn(t *testing.T) {
	snap := domainauth.Snapshot{
		Identity:   &domainauth.Identity{UserID: "user-1"},
		RoleLoaded: true,
	}

	rec, nextCalled := guardRequest(t, snap, domainauth.StudentHomePath)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.False(t, nextCalled)
	assert.Equal(t, domainauth.SignInPath, rec.Header().Get("Location"))
}

func TestGuard_RoleErrorRendersRetryPage(t *testing.T) {
	snap := domainauth.Snapshot{
		Identity: &domainauth.Identity{UserID: "user-1"},
		RoleErr:  assert.AnError,
	}

	rec, nextCalled := guardRequest(t, snap, domainauth.StudentHomePath)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, nextCalled)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), "Try again")
}

func TestGuard_UnmatchedPathIsVisible500(t *testing.T) {
	role := domainauth.RoleAdmin
	snap := domainauth.Snapshot{
		Identity:   &domainauth.Identity{UserID: "user-1"},
		Role:       &role,
		RoleLoaded: true,
	}

	rec, nextCalled := guardRequest(t, snap, "/reports/hidden")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, nextCalled)
	assert.Contains(t, rec.Body.String(), "configuration error")
}

// When the redirect target equals the current path the guard renders instead
// of bouncing, so a misfit area assignment cannot loop.
func TestGuard_RedirectIdempotence(t *testing.T) {
	role := domainauth.RoleStudent
	snap := domainauth.Snapshot{
		Identity:   &domainauth.Identity{UserID: "user-1"},
		Role:       &role,
		RoleLoaded: true,
	}
	table := domainauth.NewRouteTable([]domainauth.RouteArea{
		{PathPrefix: domainauth.StudentHomePath, RequiredRole: domainauth.RoleInstructor},
	})

	rec, nextCalled := guardRequestWithTable(t, snap, domainauth.StudentHomePath, table)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, nextCalled)
}

func TestGuard_HTMXRedirectUsesHeader(t *testing.T) {
	snap := domainauth.Snapshot{RoleLoaded: true}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard := Guard(GuardOptions{
		State:  &stubState{snap: snap},
		Routes: domainauth.DefaultRouteTable(),
	})

	req := httptest.NewRequest(http.MethodGet, domainauth.StudentHomePath, nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-1"})
	req.Header.Set("Hx-Request", "true")
	rec := httptest.NewRecorder()
	guard(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domainauth.SignInPath, rec.Header().Get("Hx-Redirect"))
}

func TestGuard_SessionPlacedInContext(t *testing.T) {
	role := domainauth.RoleInstructor
	snap := domainauth.Snapshot{
		Identity: &domainauth.Identity{
			UserID:    "user-1",
			FirstName: "Grace",
			Email:     "grace@example.com",
		},
		Role:       &role,
		RoleLoaded: true,
	}

	var got *domainauth.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	guard := Guard(GuardOptions{
		State:  &stubState{snap: snap},
		Routes: domainauth.DefaultRouteTable(),
	})

	req := httptest.NewRequest(http.MethodGet, domainauth.InstructorHomePath, nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "sess-42"})
	rec := httptest.NewRecorder()
	guard(next).ServeHTTP(rec, req)

	require.NotNil(t, got)
	assert.Equal(t, "sess-42", got.ID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "grace@example.com", got.Email)
}
