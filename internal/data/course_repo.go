package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "github.com/brightpath/academy-ui-api/internal/errors"

	"github.com/brightpath/academy-ui-api/internal/data/pgxutil"
	"github.com/brightpath/academy-ui-api/internal/domain/model"
	"github.com/jackc/pgx/v5"
)

// CourseRepo provides CRUD operations for courses and course categories.
type CourseRepo struct {
	DB *sql.DB
}

// NewCourseRepo creates a new CourseRepo.
func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{DB: db}
}

const courseColumns = `id, title, description, category_id, instructor_id, published, published_at, created_at, updated_at`

// Create inserts a new course.
func (r *CourseRepo) Create(ctx context.Context, req model.CreateCourseRequest) (*model.Course, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	published := req.Published != nil && *req.Published

	var out model.Course
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO courses (title, description, category_id, instructor_id, published, published_at)
			VALUES ($1, $2, $3, $4, $5, CASE WHEN $5 THEN now() END)
			RETURNING `+courseColumns,
			req.Title, req.Description, req.CategoryID, req.InstructorID, published)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Course])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByID fetches a course by ID.
func (r *CourseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var out model.Course
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Course])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List returns courses matching the options, newest first.
func (r *CourseRepo) List(ctx context.Context, opts model.CoursesListOptions) ([]*model.Course, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	where := make([]string, 0, 4)
	args := make([]any, 0, 6)
	argIdx := 1
	addCond := func(cond string, val any) {
		where = append(where, fmt.Sprintf(cond, argIdx))
		args = append(args, val)
		argIdx++
	}

	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		addCond("title ILIKE $%d", "%"+strings.TrimSpace(*opts.Q)+"%")
	}
	if opts.CategoryID != nil {
		addCond("category_id = $%d", *opts.CategoryID)
	}
	if opts.InstructorID != nil {
		addCond("instructor_id = $%d", *opts.InstructorID)
	}
	if opts.Published != nil {
		addCond("published = $%d", *opts.Published)
	}

	query := `SELECT ` + courseColumns + ` FROM courses`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, opts.Limit, opts.Offset)

	var coursesSlice []model.Course
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		coursesSlice, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Course])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	courses := make([]*model.Course, len(coursesSlice))
	for i := range coursesSlice {
		courses[i] = &coursesSlice[i]
	}
	return courses, nil
}

// Update modifies a course, returning the updated record.
func (r *CourseRepo) Update(ctx context.Context, id string, req model.UpdateCourseRequest) (*model.Course, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	setParts := make([]string, 0, 4)
	args := make([]any, 0, 5)
	argIdx := 1

	if req.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *req.Title)
		argIdx++
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *req.Description)
		argIdx++
	}
	if req.CategoryID != nil {
		setParts = append(setParts, fmt.Sprintf("category_id = $%d", argIdx))
		args = append(args, *req.CategoryID)
		argIdx++
	}
	if req.Published != nil {
		setParts = append(setParts, fmt.Sprintf("published = $%d", argIdx))
		args = append(args, *req.Published)
		argIdx++
		setParts = append(setParts, fmt.Sprintf("published_at = CASE WHEN $%d THEN COALESCE(published_at, now()) END", argIdx))
		args = append(args, *req.Published)
		argIdx++
	}

	args = append(args, id)
	query := "UPDATE courses SET " + strings.Join(setParts, ", ") +
		", updated_at = now()" +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", argIdx) + courseColumns

	var out model.Course
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		collected, collectErr := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Course])
		if collectErr != nil {
			return collectErr
		}
		out = collected
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Delete removes a course by ID.
func (r *CourseRepo) Delete(ctx context.Context, id string) (bool, error) {
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = ct.RowsAffected()
		return nil
	})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return affected > 0, nil
}

// ListCategories returns all course categories ordered by name.
func (r *CourseRepo) ListCategories(ctx context.Context) ([]*model.CourseCategory, error) {
	var catsSlice []model.CourseCategory
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT id, name, slug, created_at, updated_at FROM course_categories ORDER BY name ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()
		catsSlice, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.CourseCategory])
		return err
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	cats := make([]*model.CourseCategory, len(catsSlice))
	for i := range catsSlice {
		cats[i] = &catsSlice[i]
	}
	return cats, nil
}
