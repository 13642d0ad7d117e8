package httpx

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	apperrors "github.com/brightpath/academy-ui-api/internal/errors"
)

// AuthStateService is the snapshot source consumed by layout guards.
type AuthStateService interface {
	Snapshot(ctx context.Context, sessionID string) domainauth.Snapshot
}

// GuardOptions configures a layout guard middleware.
type GuardOptions struct {
	State  AuthStateService
	Routes *domainauth.RouteTable
	Logger *slog.Logger
}

// Guard returns the layout-guard middleware for protected areas. Each request
// re-runs the decision machine against a fresh snapshot, so a navigation after
// a role change or sign-out settles on the right surface without client state.
//
// The guard is fail-closed: while the session or role is still resolving it
// renders a self-refreshing placeholder and never a redirect, so a slow role
// lookup cannot bounce a legitimate admin to the student home.
func Guard(opts GuardOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &guard{state: opts.State, routes: opts.Routes, logger: logger}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.serve(w, r, next)
		})
	}
}

type guard struct {
	state  AuthStateService
	routes *domainauth.RouteTable
	logger *slog.Logger
}

func (g *guard) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	area, ok := g.routes.Match(r.URL.Path)
	if !ok {
		// A guarded mount outside the route table is a programming error.
		// Surface it loudly instead of treating it as an authorization miss.
		g.misconfigured(w, r)
		return
	}

	sessionID := ""
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		sessionID = cookie.Value
	}
	snap := g.state.Snapshot(r.Context(), sessionID)

	decision := domainauth.Decide(snap, r.URL.Path, area)
	switch decision.Kind {
	case domainauth.DecisionPending:
		g.renderPending(w, r)
	case domainauth.DecisionRedirect:
		g.redirect(w, r, decision.Target)
	case domainauth.DecisionError:
		g.renderRoleError(w, r, snap.RoleErr)
	case domainauth.DecisionRender:
		ctx := SetSnapshotInContext(r.Context(), snap)
		if snap.Identity != nil {
			ctx = SetSessionInContext(ctx, sessionFromSnapshot(sessionID, snap))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// sessionFromSnapshot rebuilds the session view handlers consume from context.
func sessionFromSnapshot(sessionID string, snap domainauth.Snapshot) *domainauth.Session {
	id := snap.Identity
	return &domainauth.Session{
		ID:        sessionID,
		UserID:    id.UserID,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Email:     id.Email,
		ExpiresAt: id.ExpiresAt,
	}
}

func (g *guard) redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		SetHXRedirect(w, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (g *guard) renderPending(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteJSON(w, http.StatusOK, map[string]any{"status": "pending"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := pendingTemplate.Execute(w, map[string]string{"Path": r.URL.Path}); err != nil {
		g.logger.ErrorContext(r.Context(), "render pending placeholder failed", slog.Any("error", err))
	}
}

func (g *guard) renderRoleError(w http.ResponseWriter, r *http.Request, roleErr error) {
	renderRoleUnavailable(w, r, g.logger, roleErr)
}

// renderRoleUnavailable answers a request whose session is fine but whose role
// lookup failed. The user keeps their session and gets a retry surface; a
// redirect to sign-in here would punish them for a backend blip.
func renderRoleUnavailable(w http.ResponseWriter, r *http.Request, logger *slog.Logger, roleErr error) {
	logger.WarnContext(r.Context(), "role resolution failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", roleErr))
	if !IsBrowserRequest(r) {
		if roleErr == nil {
			roleErr = errors.New("role lookup unavailable")
		}
		WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "role_unavailable", Err: roleErr})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := roleErrorTemplate.Execute(w, map[string]string{"Path": r.URL.Path}); err != nil {
		logger.ErrorContext(r.Context(), "render role error page failed", slog.Any("error", err))
	}
}

func (g *guard) misconfigured(w http.ResponseWriter, r *http.Request) {
	err := apperrors.MisconfiguredRoute(r.URL.Path)
	g.logger.ErrorContext(r.Context(), "guarded path has no route area",
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method))
	if !IsBrowserRequest(r) {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "misconfigured_route", Err: err})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, misconfiguredPage, template.HTMLEscapeString(r.URL.Path))
}

// pendingTemplate is the fail-closed loading shell. It long-polls /auth/wait
// until the aggregator settles, then navigates back to the wanted page; the
// meta refresh is the fallback for clients without htmx, spaced wider than
// the wait timeout so it never cuts a poll short.
var pendingTemplate = template.Must(template.New("pending").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta http-equiv="refresh" content="7">
  <title>Loading</title>
</head>
<body>
  <div hx-get="/auth/wait?next={{.Path}}" hx-trigger="load, every 6s" hx-swap="none">
    <p>Checking your session&hellip;</p>
  </div>
</body>
</html>
`))

var roleErrorTemplate = template.Must(template.New("roleError").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Temporary problem</title>
</head>
<body>
  <h1>We could not load your account right now</h1>
  <p>This is usually temporary. Your session is still active.</p>
  <a href="{{.Path}}" hx-boost="true">Try again</a>
</body>
</html>
`))

const misconfiguredPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Server error</title></head>
<body>
  <h1>Server configuration error</h1>
  <p>The page at %s is not wired to an access area. This has been logged.</p>
</body>
</html>
`
