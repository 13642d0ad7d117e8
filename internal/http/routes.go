package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/brightpath/academy-ui-api/internal/domain/auth"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth        AuthServiceInterface
	State       AuthStateService
	Interceptor AuthErrorReporter
	Courses     CourseStore
	Blog        BlogStore
	Enrollments EnrollmentStore
	// Routes defaults to the standard protected areas when nil.
	Routes       *domainauth.RouteTable
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router. Protected areas are
// mounted behind the gatekeeper (cookie presence at the edge) and their
// layout guard (snapshot-driven admission); the JSON API sits behind the
// gatekeeper only, since API handlers re-check the session from context.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	routes := services.Routes
	if routes == nil {
		routes = domainauth.DefaultRouteTable()
	}

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		State:        services.State,
		Interceptor:  services.Interceptor,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	// The aggregator supports change notifications; plain snapshot sources
	// still work, waiters just fall back to the timeout.
	if watcher, ok := services.State.(AuthStateWatcher); ok {
		authHandlers.Watch = watcher
	}
	catalogHandlers := &CatalogHandlers{
		Courses:     services.Courses,
		Blog:        services.Blog,
		Enrollments: services.Enrollments,
		Interceptor: services.Interceptor,
		Logger:      services.Logger,
	}
	dashboardHandlers := &DashboardHandlers{
		Courses:     services.Courses,
		Blog:        services.Blog,
		Enrollments: services.Enrollments,
		Logger:      services.Logger,
	}

	registerAuthRoutes(mux, authHandlers)
	registerAPIRoutes(mux, catalogHandlers, services.Auth)
	registerDashboardRoutes(mux, dashboardRouteConfig{
		Handlers: dashboardHandlers,
		State:    services.State,
		Routes:   routes,
		Logger:   services.Logger,
	})

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	mux.Handle("GET /{$}", Home(services.State))

	return BrowserDetection()(mux)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.HandleFunc("GET /auth/wait", h.Wait)
	mux.HandleFunc("GET "+domainauth.SignInPath, h.SignInPage)
}

// registerAPIRoutes mounts the JSON API behind the gatekeeper and a session
// loader so handlers find the session in context.
func registerAPIRoutes(mux *http.ServeMux, h *CatalogHandlers, auth AuthServiceInterface) {
	protect := func(handler http.HandlerFunc) http.Handler {
		return Gatekeeper()(loadSession(auth)(handler))
	}

	mux.Handle("POST /api/courses", protect(h.CreateCourse))
	mux.Handle("GET /api/courses", protect(h.ListCourses))
	mux.Handle("GET /api/courses/{id}", protect(h.GetCourse))
	mux.Handle("PUT /api/courses/{id}", protect(h.UpdateCourse))
	mux.Handle("DELETE /api/courses/{id}", protect(h.DeleteCourse))
	mux.Handle("GET /api/course-categories", protect(h.ListCourseCategories))

	mux.Handle("POST /api/blog-posts", protect(h.CreateBlogPost))
	mux.Handle("GET /api/blog-posts", protect(h.ListBlogPosts))
	mux.Handle("GET /api/blog-posts/{id}", protect(h.GetBlogPost))
	mux.Handle("PUT /api/blog-posts/{id}", protect(h.UpdateBlogPost))
	mux.Handle("DELETE /api/blog-posts/{id}", protect(h.DeleteBlogPost))

	mux.Handle("POST /api/enrollments", protect(h.Enroll))
	mux.Handle("GET /api/enrollments", protect(h.MyEnrollments))
}

// loadSession resolves the session cookie into a context session for API
// handlers. Failures pass through; handlers answer 401 themselves.
func loadSession(auth AuthServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				if session, err := auth.GetSession(r.Context(), cookie.Value); err == nil {
					r = r.WithContext(SetSessionInContext(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type dashboardRouteConfig struct {
	Handlers *DashboardHandlers
	State    AuthStateService
	Routes   *domainauth.RouteTable
	Logger   *slog.Logger
}

// registerDashboardRoutes mounts each protected area behind the gatekeeper and
// its layout guard.
func registerDashboardRoutes(mux *http.ServeMux, cfg dashboardRouteConfig) {
	guard := Guard(GuardOptions{State: cfg.State, Routes: cfg.Routes, Logger: cfg.Logger})
	protect := func(handler http.HandlerFunc) http.Handler {
		return Gatekeeper()(guard(handler))
	}

	mux.Handle("GET "+domainauth.StudentHomePath, protect(cfg.Handlers.Student))
	mux.Handle("GET "+domainauth.StudentHomePath+"/", protect(cfg.Handlers.Student))
	mux.Handle("GET "+domainauth.InstructorHomePath, protect(cfg.Handlers.Instructor))
	mux.Handle("GET "+domainauth.InstructorHomePath+"/", protect(cfg.Handlers.Instructor))
	mux.Handle("GET "+domainauth.AdminHomePath, protect(cfg.Handlers.Admin))
	mux.Handle("GET "+domainauth.AdminHomePath+"/", protect(cfg.Handlers.Admin))
}
