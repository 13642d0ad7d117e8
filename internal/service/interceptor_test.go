package service

import (
	"context"
	"sync"
	"testing"
	"time"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	mocks "github.com/brightpath/academy-ui-api/internal/mocks/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type interceptorFixture struct {
	sessions    *mocks.MemorySessionStore
	cache       *mocks.MemoryRoleCache
	interceptor *AuthErrorInterceptor
}

func newInterceptorFixture(t *testing.T) *interceptorFixture {
	t.Helper()
	sessions := mocks.NewMemorySessionStore()
	cache := mocks.NewMemoryRoleCache()

	auth := NewAuthService(AuthServiceOptions{
		Provider: mocks.NewMockAuthProvider(),
		Sessions: sessions,
	})
	roles, err := NewRoleResolver(RoleResolverOptions{
		Source: mocks.NewStubRoleSource(),
		Cache:  cache,
		Sleep:  noSleep,
	})
	require.NoError(t, err)
	state, err := NewAuthStateAggregator(AuthStateOptions{Auth: auth, Roles: roles})
	require.NoError(t, err)
	interceptor, err := NewAuthErrorInterceptor(AuthErrorInterceptorOptions{
		Auth:  auth,
		State: state,
	})
	require.NoError(t, err)

	return &interceptorFixture{sessions: sessions, cache: cache, interceptor: interceptor}
}

func (f *interceptorFixture) addSession(t *testing.T, sessionID string) {
	t.Helper()
	require.NoError(t, f.sessions.Save(context.Background(), domainauth.Session{
		ID:        sessionID,
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	role := domainauth.RoleStudent
	require.NoError(t, f.cache.Set(context.Background(), sessionID, &role, time.Minute))
}

func TestAuthErrorInterceptor_Register_Idempotent(t *testing.T) {
	f := newInterceptorFixture(t)

	release, ok := f.interceptor.Register()
	require.True(t, ok)

	// A second registration while the first is active does nothing.
	_, ok = f.interceptor.Register()
	assert.False(t, ok)

	release()
	_, ok = f.interceptor.Register()
	assert.True(t, ok)
}

func TestAuthErrorInterceptor_Report_TokenExpired(t *testing.T) {
	f := newInterceptorFixture(t)
	f.addSession(t, "sess-1")
	_, ok := f.interceptor.Register()
	require.True(t, ok)

	directive := f.interceptor.Report(context.Background(), "sess-1", apperrors.TokenExpired("jwt expired"))

	assert.True(t, directive.SignedOut)
	assert.Equal(t, domainauth.SignInPath, directive.RedirectTo)

	// Session deleted and role cache cleared
	_, err := f.sessions.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, mocks.ErrNotFound)
	assert.False(t, f.cache.Contains("sess-1"))
}

func TestAuthErrorInterceptor_Report_FirstReportWins(t *testing.T) {
	f := newInterceptorFixture(t)
	f.addSession(t, "sess-1")
	_, ok := f.interceptor.Register()
	require.True(t, ok)

	// A burst of concurrent failing calls for the same session must produce
	// exactly one sign-out directive.
	const workers = 16
	var wg sync.WaitGroup
	directives := make([]Directive, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			directives[i] = f.interceptor.Report(
				context.Background(), "sess-1", apperrors.TokenExpired("jwt expired"))
		}(i)
	}
	wg.Wait()

	signedOut := 0
	for _, d := range directives {
		if d.SignedOut {
			signedOut++
		}
	}
	assert.Equal(t, 1, signedOut)
}

func TestAuthErrorInterceptor_Report_IgnoresOtherErrors(t *testing.T) {
	f := newInterceptorFixture(t)
	f.addSession(t, "sess-1")
	_, ok := f.interceptor.Register()
	require.True(t, ok)

	directive := f.interceptor.Report(context.Background(), "sess-1", assert.AnError)
	assert.Equal(t, Directive{}, directive)

	directive = f.interceptor.Report(context.Background(), "sess-1", apperrors.NotFound("course not found"))
	assert.Equal(t, Directive{}, directive)

	// Session remains intact.
	_, err := f.sessions.Get(context.Background(), "sess-1")
	assert.NoError(t, err)
}

func TestAuthErrorInterceptor_Report_InactiveNoOp(t *testing.T) {
	f := newInterceptorFixture(t)
	f.addSession(t, "sess-1")

	// Never registered: reports do nothing.
	directive := f.interceptor.Report(context.Background(), "sess-1", apperrors.TokenExpired("jwt expired"))
	assert.Equal(t, Directive{}, directive)

	_, err := f.sessions.Get(context.Background(), "sess-1")
	assert.NoError(t, err)
}

func TestAuthErrorInterceptor_Report_NilErrorAndEmptySession(t *testing.T) {
	f := newInterceptorFixture(t)
	_, ok := f.interceptor.Register()
	require.True(t, ok)

	assert.Equal(t, Directive{}, f.interceptor.Report(context.Background(), "sess-1", nil))
	assert.Equal(t, Directive{}, f.interceptor.Report(context.Background(), "", apperrors.TokenExpired("x")))
}

func TestAuthErrorInterceptor_Forget(t *testing.T) {
	f := newInterceptorFixture(t)
	f.addSession(t, "sess-1")
	_, ok := f.interceptor.Register()
	require.True(t, ok)

	d := f.interceptor.Report(context.Background(), "sess-1", apperrors.TokenExpired("x"))
	require.True(t, d.SignedOut)

	// After Forget, the same session ID can be handled again.
	f.interceptor.Forget("sess-1")
	f.addSession(t, "sess-1")
	d = f.interceptor.Report(context.Background(), "sess-1", apperrors.TokenExpired("x"))
	assert.True(t, d.SignedOut)
}
