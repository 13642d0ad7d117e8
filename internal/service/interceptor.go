package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
)

// AuthErrorInterceptorOptions groups dependencies for AuthErrorInterceptor.
type AuthErrorInterceptorOptions struct {
	Auth   *AuthService
	State  *AuthStateAggregator
	Logger *slog.Logger
}

// Directive tells the reporting handler what to do after an auth error was
// processed. The zero value means continue normal error handling.
type Directive struct {
	SignedOut  bool
	RedirectTo string
}

// AuthErrorInterceptor funnels authentication errors raised anywhere in the
// request path through one place. The first token-expired report for a
// session wins: it signs the session out, resets aggregated auth state, and
// directs a single redirect to sign-in. Concurrent and later reports for the
// same session observe that it was already handled and do nothing, so a burst
// of failing API calls never causes duplicate sign-outs or redirect loops.
type AuthErrorInterceptor struct {
	auth   *AuthService
	state  *AuthStateAggregator
	logger *slog.Logger

	mu         sync.Mutex
	registered bool
	handled    map[string]struct{}
}

// NewAuthErrorInterceptor constructs an AuthErrorInterceptor.
func NewAuthErrorInterceptor(opts AuthErrorInterceptorOptions) (*AuthErrorInterceptor, error) {
	if opts.Auth == nil {
		return nil, errors.New("auth service is required")
	}
	if opts.State == nil {
		return nil, errors.New("auth state aggregator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthErrorInterceptor{
		auth:    opts.Auth,
		state:   opts.State,
		logger:  logger.With("component", "auth_interceptor"),
		handled: make(map[string]struct{}),
	}, nil
}

// Register activates the interceptor and returns a release func. Registration
// is idempotent: while one registration is active, further calls return
// ok=false and change nothing, so wiring it twice cannot double-handle errors.
func (i *AuthErrorInterceptor) Register() (func(), bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.registered {
		return func() {}, false
	}
	i.registered = true
	release := func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		i.registered = false
	}
	return release, true
}

// Report processes an auth error for a session. Only token-expired errors
// trigger the sign-out flow; everything else is left to the caller's normal
// error handling and returns a zero directive.
func (i *AuthErrorInterceptor) Report(ctx context.Context, sessionID string, err error) Directive {
	if err == nil || sessionID == "" {
		return Directive{}
	}
	if !apperrors.IsTokenExpired(err) {
		return Directive{}
	}

	if !i.claim(sessionID) {
		// Another report already won for this session.
		return Directive{}
	}

	i.logger.InfoContext(ctx, "token expired, signing session out", "session_id", sessionID)

	if logoutErr := i.auth.Logout(ctx, sessionID); logoutErr != nil {
		i.logger.ErrorContext(ctx, "failed to delete session", "err", logoutErr, "session_id", sessionID)
	}
	if resetErr := i.state.Reset(ctx, sessionID); resetErr != nil {
		i.logger.ErrorContext(ctx, "failed to reset auth state", "err", resetErr, "session_id", sessionID)
	}

	return Directive{
		SignedOut:  true,
		RedirectTo: domainauth.SignInPath,
	}
}

// Forget clears the handled marker for a session ID. Session IDs are random
// per login so collisions do not happen in practice; this keeps the marker
// set from growing across long uptimes.
func (i *AuthErrorInterceptor) Forget(sessionID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.handled, sessionID)
}

// claim atomically marks a session as handled. It returns false when the
// interceptor is inactive or the session was already claimed.
func (i *AuthErrorInterceptor) claim(sessionID string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.registered {
		return false
	}
	if _, done := i.handled[sessionID]; done {
		return false
	}
	i.handled[sessionID] = struct{}{}
	return true
}
