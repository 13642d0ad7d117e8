package httpx

import (
	"errors"
	"net/http"
	"net/url"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
)

// Gatekeeper returns the edge middleware for protected areas. It checks only
// for the presence of the session cookie; it never hits the session store and
// never inspects roles. Those checks belong to the layout guard behind it,
// which sees the full snapshot. Keeping the edge cheap means an anonymous
// crawler is bounced without a Redis round trip.
func Gatekeeper() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := r.Cookie(sessionCookieName); err == nil {
				next.ServeHTTP(w, r)
				return
			}

			if IsBrowserRequest(r) {
				redirectToSignIn(w, r)
				return
			}
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "authentication_required",
				Err:     errors.New("authentication required"),
			})
		})
	}
}

// redirectToSignIn sends the browser to the sign-in page, preserving the
// requested path so the post-login redirect can restore it.
func redirectToSignIn(w http.ResponseWriter, r *http.Request) {
	u := url.URL{Path: domainauth.SignInPath}
	q := url.Values{}
	q.Set("redirect_uri", safeRedirectPath(r.URL.RequestURI()))
	u.RawQuery = q.Encode()

	if IsHTMX(r) {
		// htmx swaps would otherwise splice the sign-in page into the layout.
		SetHXRedirect(w, u.String())
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}
