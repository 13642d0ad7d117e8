// Package devseed populates development fixtures so a freshly migrated
// database is immediately usable: profiles for each role, course categories,
// a few published courses, a blog post, and an enrollment for the seeded
// student. Seeding is idempotent and only runs in dev mode.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	"github.com/brightpath/academy-ui-api/internal/data"
	"github.com/brightpath/academy-ui-api/internal/domain/model"
)

// Config identifies the dev login user so it gets a profile with a role;
// without one the route guards would bounce the dev user to sign-in forever.
type Config struct {
	DevUserID    string
	DevEmail     string
	DevFirstName string
	DevLastName  string
}

const (
	seedInstructorID = "seed-instructor"
	seedStudentID    = "seed-student"
)

// Seed inserts development fixtures. Existing rows are left alone, so it is
// safe to run on every startup.
func Seed(ctx context.Context, db *sql.DB, cfg Config, logger *slog.Logger) error {
	profiles, err := data.NewProfileRepo(db, "")
	if err != nil {
		return fmt.Errorf("devseed: build profile repo: %w", err)
	}
	courses := data.NewCourseRepo(db)
	blog := data.NewBlogRepo(db)
	enrollments := data.NewEnrollmentRepo(db)

	if err := seedProfiles(ctx, profiles, cfg); err != nil {
		return err
	}
	if err := seedCategories(ctx, db); err != nil {
		return err
	}
	courseID, err := seedCourses(ctx, courses)
	if err != nil {
		return err
	}
	if err := seedBlogPosts(ctx, blog); err != nil {
		return err
	}
	if courseID != "" {
		if err := seedEnrollment(ctx, enrollments, courseID); err != nil {
			return err
		}
	}

	if logger != nil {
		logger.InfoContext(ctx, "development fixtures seeded",
			"dev_user", cfg.DevUserID,
			"instructor", seedInstructorID,
			"student", seedStudentID)
	}
	return nil
}

func seedProfiles(ctx context.Context, profiles *data.ProfileRepo, cfg Config) error {
	adminRole := "admin"
	instructorRole := "instructor"
	studentRole := "student"

	fixtures := []model.CreateProfileRequest{
		{
			UserID:    cfg.DevUserID,
			FirstName: orDefault(cfg.DevFirstName, "Dev"),
			LastName:  orDefault(cfg.DevLastName, "User"),
			Email:     orDefault(cfg.DevEmail, "dev@example.com"),
			Role:      &adminRole,
		},
		{
			UserID:    seedInstructorID,
			FirstName: "Ida",
			LastName:  "Instructor",
			Email:     "ida.instructor@example.com",
			Role:      &instructorRole,
		},
		{
			UserID:    seedStudentID,
			FirstName: "Sam",
			LastName:  "Student",
			Email:     "sam.student@example.com",
			Role:      &studentRole,
		},
	}

	for _, req := range fixtures {
		if req.UserID == "" {
			continue
		}
		if _, err := profiles.Create(ctx, req); err != nil && !apperrors.IsConflict(err) {
			return fmt.Errorf("devseed: create profile %s: %w", req.UserID, err)
		}
	}
	return nil
}

func seedCategories(ctx context.Context, db *sql.DB) error {
	categories := []struct{ name, slug string }{
		{"Programming", "programming"},
		{"Design", "design"},
		{"Business", "business"},
	}
	for _, c := range categories {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO course_categories (name, slug) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			c.name, c.slug,
		); err != nil {
			return fmt.Errorf("devseed: insert category %s: %w", c.name, err)
		}
	}
	return nil
}

// seedCourses creates sample courses for the seeded instructor and returns
// the ID of the first one for the enrollment fixture.
func seedCourses(ctx context.Context, courses *data.CourseRepo) (string, error) {
	instructorID := seedInstructorID
	existing, err := courses.List(ctx, model.CoursesListOptions{InstructorID: &instructorID, Limit: 1})
	if err != nil {
		return "", fmt.Errorf("devseed: list courses: %w", err)
	}
	if len(existing) > 0 {
		return existing[0].ID, nil
	}

	published := true
	fixtures := []model.CreateCourseRequest{
		{
			Title:        "Intro to Go",
			Description:  strPtr("Build your first Go services from scratch."),
			InstructorID: seedInstructorID,
			Published:    &published,
		},
		{
			Title:        "Web Fundamentals",
			Description:  strPtr("HTML, HTTP, and everything between."),
			InstructorID: seedInstructorID,
			Published:    &published,
		},
	}

	var firstID string
	for _, req := range fixtures {
		course, err := courses.Create(ctx, req)
		if err != nil {
			return "", fmt.Errorf("devseed: create course %q: %w", req.Title, err)
		}
		if firstID == "" {
			firstID = course.ID
		}
	}
	return firstID, nil
}

func seedBlogPosts(ctx context.Context, blog *data.BlogRepo) error {
	authorID := seedInstructorID
	existing, err := blog.List(ctx, model.BlogPostsListOptions{AuthorID: &authorID, Limit: 1})
	if err != nil {
		return fmt.Errorf("devseed: list blog posts: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	published := true
	_, err = blog.Create(ctx, model.CreateBlogPostRequest{
		Title:     "Welcome to the academy",
		Body:      "New courses land every month. Enroll and start learning.",
		AuthorID:  seedInstructorID,
		Published: &published,
	})
	if err != nil {
		return fmt.Errorf("devseed: create blog post: %w", err)
	}
	return nil
}

func seedEnrollment(ctx context.Context, enrollments *data.EnrollmentRepo, courseID string) error {
	existing, err := enrollments.ListByStudent(ctx, seedStudentID)
	if err != nil {
		return fmt.Errorf("devseed: list enrollments: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	_, err = enrollments.Create(ctx, model.CreateEnrollmentRequest{
		StudentID: seedStudentID,
		CourseID:  courseID,
	})
	if err != nil && !apperrors.IsConflict(err) {
		return fmt.Errorf("devseed: create enrollment: %w", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func strPtr(s string) *string { return &s }
