package httpx

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	"github.com/brightpath/academy-ui-api/internal/service"
)

const sessionCookieName = "session_id"

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthStateWatcher extends the snapshot source with change notifications, so
// long-poll waiters wake immediately when a sign-out resets the state instead
// of discovering it on their next interval.
type AuthStateWatcher interface {
	AuthStateService
	Subscribe(sessionID string) (func(), <-chan struct{})
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	State        AuthStateService
	Watch        AuthStateWatcher
	Interceptor  AuthErrorReporter
	CookieDomain string
	// WaitTimeout caps a single long-poll on /auth/wait. Zero means the
	// default.
	WaitTimeout time.Duration
	Logger      *slog.Logger
}

// forgetSession releases the interceptor marker for a session whose lifecycle
// ended here (logout, or replacement by a fresh login).
func (h *AuthHandlers) forgetSession(sessionID string) {
	if h.Interceptor != nil && sessionID != "" {
		h.Interceptor.Forget(sessionID)
	}
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the login initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     err,
		})
		return
	}

	// Store state, nonce, and the original redirect URI in secure cookies
	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: redirectURI})

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the OAuth callback endpoint.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	// Verify state and read nonce
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Err:     err,
		})
		return
	}

	// A fresh login replaces whatever session the browser still carried;
	// drop its interceptor marker along with it.
	if old, cookieErr := r.Cookie(sessionCookieName); cookieErr == nil {
		h.forgetSession(old.Value)
	}

	h.setSessionCookie(w, r, result.Session)
	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")

	// The stored destination wins; otherwise land on the home router, which
	// forwards to the canonical home once the role resolves.
	http.Redirect(w, r, h.getPostLoginRedirect(w, r), http.StatusFound)
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie(sessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
		h.forgetSession(sessionCookie.Value)
	}

	h.clearCookie(w, r, sessionCookieName)

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = r.URL.Query().Get("redirect_uri")
	}
	redirectURI = safeRedirectPath(redirectURI)

	u := url.URL{Path: domainauth.SignInPath}
	q := url.Values{}
	if redirectURI != "/" {
		q.Set("redirect_uri", redirectURI)
	}
	u.RawQuery = q.Encode()
	signInURL := u.String()

	// AJAX/HTMX requests get a JSON payload; regular requests redirect
	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		IsHTMX(r) ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": signInURL,
		})
		return
	}

	http.Redirect(w, r, signInURL, http.StatusFound)
}

const defaultWaitTimeout = 5 * time.Second

// Wait long-polls until the auth state for the current session settles, then
// directs the client back to the page it asked for. The loading shell calls
// this instead of blind interval polling. A settled unauthenticated state
// goes to sign-in; everything else returns to the requested page, where the
// guard re-decides.
// GET /auth/wait?next=<path>.
func (h *AuthHandlers) Wait(w http.ResponseWriter, r *http.Request) {
	next := safeRedirectPath(r.URL.Query().Get("next"))

	sessionCookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		h.waitDone(w, r, domainauth.SignInPath)
		return
	}
	sessionID := sessionCookie.Value

	state := h.State
	if h.Watch != nil {
		state = h.Watch
	}
	if state == nil {
		h.waitDone(w, r, next)
		return
	}

	var signal <-chan struct{}
	if h.Watch != nil {
		unsub, ch := h.Watch.Subscribe(sessionID)
		defer unsub()
		signal = ch
	}

	timeout := h.WaitTimeout
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		snap := state.Snapshot(r.Context(), sessionID)
		if !snap.Pending() {
			if snap.Identity == nil {
				h.waitDone(w, r, domainauth.SignInPath)
				return
			}
			h.waitDone(w, r, next)
			return
		}
		if signal == nil {
			WriteJSON(w, http.StatusOK, map[string]string{"status": "pending"})
			return
		}
		select {
		case <-signal:
		case <-deadline.C:
			WriteJSON(w, http.StatusOK, map[string]string{"status": "pending"})
			return
		case <-r.Context().Done():
			return
		}
	}
}

// waitDone tells the waiting client where to navigate now that the state
// settled.
func (h *AuthHandlers) waitDone(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		SetHXRedirect(w, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready", "redirect_to": target})
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		// Session is invalid or expired, clear the cookie
		h.clearCookie(w, r, sessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	payload := map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":         session.UserID,
			"first_name": session.FirstName,
			"last_name":  session.LastName,
			"email":      session.Email,
		},
		"expires_at": session.ExpiresAt,
	}

	// The role is a profile fact, not a session fact. Expose it only once the
	// aggregator has resolved it; a pending lookup reports role_loaded=false.
	if h.State != nil {
		snap := h.State.Snapshot(r.Context(), session.ID)
		payload["role_loaded"] = snap.RoleLoaded
		if snap.RoleLoaded && snap.Role != nil {
			payload["role"] = string(*snap.Role)
		}
	}

	WriteJSON(w, http.StatusOK, payload)
}

// SignInPage renders the sign-in page.
// GET /signin?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) SignInPage(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	loginURL := url.URL{Path: "/auth/login"}
	q := url.Values{}
	if redirectURI != "/" {
		q.Set("redirect_uri", redirectURI)
	}
	loginURL.RawQuery = q.Encode()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := signInTemplate.Execute(w, map[string]string{"LoginURL": loginURL.String()}); err != nil {
		h.logger().ErrorContext(r.Context(), "render sign-in page failed", "error", err)
	}
}

var signInTemplate = template.Must(template.New("signin").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Sign in</title>
</head>
<body>
  <h1>Sign in to BrightPath Academy</h1>
  <a href="{{.LoginURL}}">Continue with your account</a>
</body>
</html>
`))

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// oauthCookieParams groups values needed to set OAuth cookies.
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in secure cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")

	const oauthCookieTTL = 600 // 10 minutes
	for name, value := range map[string]string{
		"oauth_state":         p.State,
		"oauth_nonce":         p.Nonce,
		"post_login_redirect": p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   oauthCookieTTL,
		})
	}
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if redirectCookie, err := r.Cookie("post_login_redirect"); err == nil {
		redirectURI = safeRedirectPath(redirectCookie.Value)
		h.clearCookie(w, r, "post_login_redirect")
	}
	return redirectURI
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
