package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brightpath/academy-ui-api/internal/domain/model"
	apperrors "github.com/brightpath/academy-ui-api/internal/errors"
	"github.com/brightpath/academy-ui-api/internal/service"
)

// CourseStore is the course repository surface the handlers need.
type CourseStore interface {
	Create(ctx context.Context, req model.CreateCourseRequest) (*model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, opts model.CoursesListOptions) ([]*model.Course, error)
	Update(ctx context.Context, id string, req model.UpdateCourseRequest) (*model.Course, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListCategories(ctx context.Context) ([]*model.CourseCategory, error)
}

// BlogStore is the blog-post repository surface the handlers need.
type BlogStore interface {
	Create(ctx context.Context, req model.CreateBlogPostRequest) (*model.BlogPost, error)
	GetByID(ctx context.Context, id string) (*model.BlogPost, error)
	List(ctx context.Context, opts model.BlogPostsListOptions) ([]*model.BlogPost, error)
	Update(ctx context.Context, id string, req model.UpdateBlogPostRequest) (*model.BlogPost, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// EnrollmentStore is the enrollment repository surface the handlers need.
type EnrollmentStore interface {
	Create(ctx context.Context, req model.CreateEnrollmentRequest) (*model.StudentEnrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.StudentEnrollment, error)
	UpdateStatus(ctx context.Context, id string, status model.EnrollmentStatus) (*model.StudentEnrollment, error)
}

// AuthErrorReporter receives credential failures raised by data handlers.
// Forget releases the handled marker for a session once its lifecycle ends,
// so the interceptor's bookkeeping does not outlive the session.
type AuthErrorReporter interface {
	Report(ctx context.Context, sessionID string, err error) service.Directive
	Forget(sessionID string)
}

// CatalogHandlers provides the JSON API for courses, blog posts, and
// enrollments. Every handler runs behind the gatekeeper, consumes the session
// from context, and raises credential failures to the central interceptor
// instead of handling them locally.
type CatalogHandlers struct {
	Courses     CourseStore
	Blog        BlogStore
	Enrollments EnrollmentStore
	Interceptor AuthErrorReporter
	Logger      *slog.Logger
}

// raise routes an error to the interceptor first, then to the client. When the
// interceptor decides the session is gone it answers with the sign-out
// directive so the client can navigate; everything else maps through the
// normal taxonomy.
func (h *CatalogHandlers) raise(w http.ResponseWriter, r *http.Request, err error) {
	if h.Interceptor != nil && apperrors.IsTokenExpired(err) {
		sessionID := ""
		if s := GetSessionFromContext(r.Context()); s != nil {
			sessionID = s.ID
		}
		if d := h.Interceptor.Report(r.Context(), sessionID, err); d.SignedOut {
			SetHXRedirect(w, d.RedirectTo)
			WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error":       "token_expired",
				"redirect_to": d.RedirectTo,
			})
			return
		}
	}
	WriteAppError(w, err)
}

func requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	s := GetSessionFromContext(r.Context())
	if s == nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return "", false
	}
	return s.UserID, true
}

// CreateCourse handles POST /api/courses.
func (h *CatalogHandlers) CreateCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req model.CreateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.InstructorID == "" {
		req.InstructorID = userID
	}

	course, err := h.Courses.Create(r.Context(), req)
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, course)
}

// ListCourses handles GET /api/courses.
func (h *CatalogHandlers) ListCourses(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var opts model.CoursesListOptions
	if q := r.URL.Query().Get("q"); q != "" {
		opts.Q = &q
	}
	if categoryID := r.URL.Query().Get("category_id"); categoryID != "" {
		opts.CategoryID = &categoryID
	}
	courses, err := h.Courses.List(r.Context(), opts)
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

// GetCourse handles GET /api/courses/{id}.
func (h *CatalogHandlers) GetCourse(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	course, err := h.Courses.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

// UpdateCourse handles PUT /api/courses/{id}.
func (h *CatalogHandlers) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req model.UpdateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	course, err := h.Courses.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

// DeleteCourse handles DELETE /api/courses/{id}.
func (h *CatalogHandlers) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	deleted, err := h.Courses.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.raise(w, r, err)
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("course not found"),
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCourseCategories handles GET /api/course-categories.
func (h *CatalogHandlers) ListCourseCategories(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	categories, err := h.Courses.ListCategories(r.Context())
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// CreateBlogPost handles POST /api/blog-posts.
func (h *CatalogHandlers) CreateBlogPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req model.CreateBlogPostRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.AuthorID == "" {
		req.AuthorID = userID
	}

	post, err := h.Blog.Create(r.Context(), req)
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, post)
}

// ListBlogPosts handles GET /api/blog-posts.
func (h *CatalogHandlers) ListBlogPosts(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var opts model.BlogPostsListOptions
	if author := r.URL.Query().Get("author_id"); author != "" {
		opts.AuthorID = &author
	}
	posts, err := h.Blog.List(r.Context(), opts)
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// GetBlogPost handles GET /api/blog-posts/{id}.
func (h *CatalogHandlers) GetBlogPost(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	post, err := h.Blog.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, post)
}

// UpdateBlogPost handles PUT /api/blog-posts/{id}.
func (h *CatalogHandlers) UpdateBlogPost(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req model.UpdateBlogPostRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	post, err := h.Blog.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, post)
}

// DeleteBlogPost handles DELETE /api/blog-posts/{id}.
func (h *CatalogHandlers) DeleteBlogPost(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	deleted, err := h.Blog.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.raise(w, r, err)
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("blog post not found"),
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Enroll handles POST /api/enrollments. Students enroll themselves.
func (h *CatalogHandlers) Enroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req model.CreateEnrollmentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.StudentID = userID

	enrollment, err := h.Enrollments.Create(r.Context(), req)
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, enrollment)
}

// MyEnrollments handles GET /api/enrollments.
func (h *CatalogHandlers) MyEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSession(w, r)
	if !ok {
		return
	}

	enrollments, err := h.Enrollments.ListByStudent(r.Context(), userID)
	if err != nil {
		h.raise(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"enrollments": enrollments})
}
