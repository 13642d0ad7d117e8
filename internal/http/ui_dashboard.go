package httpx

import (
	"html/template"
	"log/slog"
	"net/http"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
	"github.com/brightpath/academy-ui-api/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// DashboardHandlers renders the per-role dashboard pages behind the layout
// guards. The guard has already admitted the request, so handlers trust the
// session and snapshot in context.
type DashboardHandlers struct {
	Courses     CourseStore
	Blog        BlogStore
	Enrollments EnrollmentStore
	Logger      *slog.Logger
}

func (h *DashboardHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Home routes "/" to the canonical home for the resolved role. It reuses the
// snapshot placed in context by the guard; an unauthenticated visitor lands on
// the sign-in page.
func Home(state AuthStateService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			sessionID = cookie.Value
		}
		snap := state.Snapshot(r.Context(), sessionID)

		if snap.Pending() {
			// Same fail-closed shell the guards use.
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			if err := pendingTemplate.Execute(w, map[string]string{"Path": r.URL.Path}); err != nil {
				slog.Default().ErrorContext(r.Context(), "render pending placeholder failed", "error", err)
			}
			return
		}
		if snap.Identity == nil {
			http.Redirect(w, r, domainauth.SignInPath, http.StatusSeeOther)
			return
		}
		if snap.RoleErr != nil {
			// Session is valid, only the role lookup failed. Offer a retry
			// instead of bouncing an authenticated user to sign-in.
			renderRoleUnavailable(w, r, slog.Default(), snap.RoleErr)
			return
		}
		http.Redirect(w, r, domainauth.HomePath(snap.Role), http.StatusSeeOther)
	}
}

type dashboardData struct {
	Title       string
	Name        string
	Courses     []*model.Course
	Posts       []*model.BlogPost
	Enrollments []*model.StudentEnrollment
	Categories  []*model.CourseCategory
}

// Student renders GET /dashboard/student.
func (h *DashboardHandlers) Student(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, domainauth.SignInPath, http.StatusSeeOther)
		return
	}

	published := true
	data := dashboardData{Title: "Student dashboard", Name: session.FirstName}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		enrollments, err := h.Enrollments.ListByStudent(ctx, session.UserID)
		if err != nil {
			return err
		}
		data.Enrollments = enrollments
		return nil
	})
	g.Go(func() error {
		courses, err := h.Courses.List(ctx, model.CoursesListOptions{Published: &published, Limit: 20})
		if err != nil {
			return err
		}
		data.Courses = courses
		return nil
	})
	if err := g.Wait(); err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, data)
}

// Instructor renders GET /dashboard/instructor.
func (h *DashboardHandlers) Instructor(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, domainauth.SignInPath, http.StatusSeeOther)
		return
	}

	data := dashboardData{Title: "Instructor dashboard", Name: session.FirstName}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		courses, err := h.Courses.List(ctx, model.CoursesListOptions{InstructorID: &session.UserID})
		if err != nil {
			return err
		}
		data.Courses = courses
		return nil
	})
	g.Go(func() error {
		posts, err := h.Blog.List(ctx, model.BlogPostsListOptions{AuthorID: &session.UserID})
		if err != nil {
			return err
		}
		data.Posts = posts
		return nil
	})
	if err := g.Wait(); err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, data)
}

// Admin renders GET /dashboard2/admin.
func (h *DashboardHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, domainauth.SignInPath, http.StatusSeeOther)
		return
	}

	data := dashboardData{Title: "Admin dashboard", Name: session.FirstName}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		courses, err := h.Courses.List(ctx, model.CoursesListOptions{Limit: 50})
		if err != nil {
			return err
		}
		data.Courses = courses
		return nil
	})
	g.Go(func() error {
		posts, err := h.Blog.List(ctx, model.BlogPostsListOptions{Limit: 50})
		if err != nil {
			return err
		}
		data.Posts = posts
		return nil
	})
	g.Go(func() error {
		categories, err := h.Courses.ListCategories(ctx)
		if err != nil {
			return err
		}
		data.Categories = categories
		return nil
	})
	if err := g.Wait(); err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, data)
}

func (h *DashboardHandlers) render(w http.ResponseWriter, r *http.Request, data dashboardData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render dashboard failed",
			slog.String("dashboard", data.Title),
			slog.Any("error", err))
	}
}

func (h *DashboardHandlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().ErrorContext(r.Context(), "dashboard fetch failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	if !IsBrowserRequest(r) {
		WriteAppError(w, err)
		return
	}
	http.Error(w, "Something went wrong loading your dashboard.", http.StatusInternalServerError)
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p>Welcome back{{if .Name}}, {{.Name}}{{end}}.</p>
    <form method="post" action="/auth/logout"><button type="submit">Sign out</button></form>
  </header>
  {{if .Enrollments}}
  <section>
    <h2>My enrollments</h2>
    <ul>{{range .Enrollments}}<li>{{.CourseID}} ({{.Status}})</li>{{end}}</ul>
  </section>
  {{end}}
  {{if .Courses}}
  <section>
    <h2>Courses</h2>
    <ul>{{range .Courses}}<li>{{.Title}}{{if not .Published}} (draft){{end}}</li>{{end}}</ul>
  </section>
  {{end}}
  {{if .Posts}}
  <section>
    <h2>Blog posts</h2>
    <ul>{{range .Posts}}<li>{{.Title}}{{if not .Published}} (draft){{end}}</li>{{end}}</ul>
  </section>
  {{end}}
  {{if .Categories}}
  <section>
    <h2>Course categories</h2>
    <ul>{{range .Categories}}<li>{{.Name}}</li>{{end}}</ul>
  </section>
  {{end}}
</body>
</html>
`))
